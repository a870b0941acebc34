package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// pathID parses the `:id` path param.
func pathID(ctx echo.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// ownerAndPathID returns the authenticated User's ID along with the `:id` path param.
func ownerAndPathID(ctx echo.Context) (owner, id int64, err error) {
	if owner, err = ownerID(ctx); err != nil {
		return 0, 0, err
	}
	id, err = pathID(ctx)
	return owner, id, err
}

// bind decodes the request body into `dest`; malformed bodies are client errors.
func bind(ctx echo.Context, dest interface{}, name string) error {
	if err := ctx.Bind(dest); err != nil {
		return errors.Wrap(err, "binding to "+name)
	}
	return nil
}
