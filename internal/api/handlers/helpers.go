package handlers

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
)

func hostOf(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	return u.Hostname()
}

// clientLocation reads the caller's IANA zone from the tz query parameter
func clientLocation(c *fiber.Ctx) (*time.Location, error) {
	name := c.Query("tz")
	if name == "" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}
