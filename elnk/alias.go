package elnk

import (
	"crypto/rand"
	"math/big"
)

const (
	aliasLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	aliasDigits  = "0123456789"
	aliasSpecial = "-_"

	// DefaultAliasLength is the length of generated aliases when none is given
	DefaultAliasLength = 8
)

// AliasOptions selects the character classes of GenerateAlias. Letters are
// always included.
type AliasOptions struct {
	Length  int
	Numbers bool
	Special bool
}

// DefaultAliasOptions returns 8 characters of letters and digits
func DefaultAliasOptions() AliasOptions {
	return AliasOptions{Length: DefaultAliasLength, Numbers: true}
}

// Charset returns the characters GenerateAlias draws from
func (o AliasOptions) Charset() string {
	chars := aliasLetters
	if o.Numbers {
		chars += aliasDigits
	}
	if o.Special {
		chars += aliasSpecial
	}
	return chars
}

// GenerateAlias returns a random alias of exactly opts.Length characters.
// A zero length yields an empty alias.
func GenerateAlias(opts AliasOptions) (string, error) {
	if opts.Length < 0 {
		return "", invalidArgument("alias length cannot be negative")
	}

	chars := opts.Charset()
	limit := big.NewInt(int64(len(chars)))

	b := make([]byte, opts.Length)
	for i := range b {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b[i] = chars[n.Int64()]
	}

	return string(b), nil
}
