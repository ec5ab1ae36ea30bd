// Package parser decodes request query strings into tagged structs.
package parser

import (
	"fmt"
	"net/url"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/schema"
)

var (
	decoderOnce sync.Once
	decoder     *schema.Decoder
)

func queryDecoder() *schema.Decoder {
	decoderOnce.Do(func() {
		decoder = schema.NewDecoder()
		decoder.IgnoreUnknownKeys(true)
		decoder.SetAliasTag("query")
	})
	return decoder
}

// QueryValues copies the request query string, keeping repeated keys
func QueryValues(c *fiber.Ctx) url.Values {
	values := url.Values{}
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		values.Add(string(key), string(value))
	})
	return values
}

// DecodeValues fills dst from values using `query` struct tags
func DecodeValues(dst interface{}, values url.Values) error {
	if err := queryDecoder().Decode(dst, values); err != nil {
		return fmt.Errorf("failed to decode query: %w", err)
	}
	return nil
}

// DecodeQuery fills dst from the request query string
func DecodeQuery(c *fiber.Ctx, dst interface{}) error {
	return DecodeValues(dst, QueryValues(c))
}
