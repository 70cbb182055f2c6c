package ride

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

// GenerateOTP returns a 6-digit code uniform in [100000, 999999]. Codes are
// random, not unique: two concurrent rides can share one, which is fine
// because a code is only ever checked against its own ride.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
