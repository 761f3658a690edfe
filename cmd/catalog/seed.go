package main

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-faker/faker/v4"

	"catalog/db"
	"catalog/encoder"
)

// fake IDs are three letters of a random word plus a counter, e.g. "GEA0042"
func fakePartID(i int) string {
	prefix := strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, faker.Word())
	prefix += "XXX"
	return fmt.Sprintf("%s%04d", prefix[:3], i%10000)[:encoder.KeyWidth]
}

func seedCatalog(c *db.Catalog, n int) error {
	for i := 0; i < n; i++ {
		desc := faker.Word() + " " + faker.Word()
		if err := c.Modify(fakePartID(i), desc); err != nil {
			return err
		}
	}
	return nil
}
