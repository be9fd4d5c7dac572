// Package id generates short random identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// alphabet omits look-alike characters so IDs survive being read aloud
// or copied from logs.
const alphabet = "23456789abcdefghjkmnpqrstuvwxyz"

// Size is the length of the random part of an ID.
const Size = 20

// Generate creates a prefixed random ID, e.g. "tok-7kq3m9x2b4..." .
// Returns an error if the system has insufficient entropy.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.Generate(alphabet, Size)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}
