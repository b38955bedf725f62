// Package params holds the request parsing helpers shared by the REST
// controllers.
package params

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
)

const orgHeader = "X-Org-ID"

// OrgID extracts the caller's organization from the X-Org-ID header,
// falling back to the org_id query parameter.
func OrgID(c echo.Context) (int64, error) {
	raw := c.Request().Header.Get(orgHeader)
	if raw == "" {
		raw = c.QueryParam("org_id")
	}

	if raw == "" {
		return 0, fmt.Errorf("organization is required: set %s", orgHeader)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid organization id %q", raw)
	}

	return id, nil
}

// ID parses the named path parameter as an int64.
func ID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, c.Param(name))
	}

	return id, nil
}

// Limit parses the limit query parameter; absent means zero.
func Limit(c echo.Context) (uint64, error) {
	return uintQuery(c, "limit")
}

// Offset parses the offset query parameter; absent means zero.
func Offset(c echo.Context) (uint64, error) {
	return uintQuery(c, "offset")
}

func uintQuery(c echo.Context, name string) (uint64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}

	return strconv.ParseUint(raw, 10, 64)
}
