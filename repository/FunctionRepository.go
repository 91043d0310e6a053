package repository

import (
	"fmt"
	"math/rand"
	"strings"
)

const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateRandomCode returns two capital letters followed by five digits,
// e.g. "KX48213".
func GenerateRandomCode() string {
	prefix := string(letters[rand.Intn(len(letters))]) + string(letters[rand.Intn(len(letters))])
	number := rand.Intn(90000) + 10000

	return fmt.Sprintf("%s%d", prefix, number)
}

// GenerateReferenceCode prefixes a random code with the document kind,
// e.g. GenerateReferenceCode("rfq") -> "RFQ-KX48213".
func GenerateReferenceCode(kind string) string {
	return strings.ToUpper(kind) + "-" + GenerateRandomCode()
}
