package domain

import "fmt"

// RoutingNumberLength is the length of an ABA routing transit number.
const RoutingNumberLength = 9

var routingWeights = [RoutingNumberLength]int{3, 7, 1, 3, 7, 1, 3, 7, 1}

// ValidateRoutingNumber checks length, digits and the ABA 3-7-1 checksum.
func ValidateRoutingNumber(rn string) error {
	if len(rn) != RoutingNumberLength {
		return fmt.Errorf("%w: must be %d digits", ErrInvalidRoutingNumber, RoutingNumberLength)
	}

	sum := 0
	for i := 0; i < RoutingNumberLength; i++ {
		c := rn[i]
		if c < '0' || c > '9' {
			return fmt.Errorf("%w: must contain only digits", ErrInvalidRoutingNumber)
		}
		sum += int(c-'0') * routingWeights[i]
	}

	if sum%10 != 0 {
		return fmt.Errorf("%w: checksum mismatch", ErrInvalidRoutingNumber)
	}

	return nil
}

// RoutingPrefix returns the first eight digits of a routing number, the
// part used as the RDFI/ODFI identification and summed into entry hashes.
func RoutingPrefix(rn string) string {
	if len(rn) < 8 {
		return rn
	}
	return rn[:8]
}
