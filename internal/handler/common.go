package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/property-listing/internal/store"
)

// requestTimeout bounds bridge writes triggered by a request.
const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func notFound(c echo.Context, what string) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": what + " not found"})
}

// dispatch sends a to the store and maps the outcome.  On Updated it
// calls onUpdated with the state the commit produced; NotFound becomes 404
// naming what; lifecycle errors become 503.
func dispatch(c echo.Context, st *store.Store, a store.Action, what string, onUpdated func(store.State) error) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	out, s, err := st.DispatchAndRead(ctx, a)
	switch {
	case errors.Is(err, store.ErrNotInitialized), errors.Is(err, store.ErrDisposed):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": err.Error()})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "dispatch failed"})
	case out == store.NotFound:
		return notFound(c, what)
	}
	return onUpdated(s)
}
