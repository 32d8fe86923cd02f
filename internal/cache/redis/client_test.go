package redis

import (
	"testing"

	goredis "github.com/redis/go-redis/v9"
)

func TestCloseReleasesPool(t *testing.T) {
	c := &Client{client: goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})}
	if err := c.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}
