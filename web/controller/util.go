package controller

import (
	"errors"
	"net/http"
	"strconv"

	"ragtime/logger"
	"ragtime/util/common"
	"ragtime/web/entity"

	"github.com/gin-gonic/gin"
)

// jsonMsg sends a JSON response with a message and error status.
func jsonMsg(c *gin.Context, msg string, err error) {
	jsonMsgObj(c, msg, nil, err)
}

// jsonObj sends a JSON response with an object and error status.
func jsonObj(c *gin.Context, obj any, err error) {
	jsonMsgObj(c, "", obj, err)
}

// jsonMsgObj sends a JSON response in the standard envelope. Errors pick
// the HTTP status from the domain error kind.
func jsonMsgObj(c *gin.Context, msg string, obj any, err error) {
	m := entity.Msg{
		Obj: obj,
	}
	if err == nil {
		m.Success = true
		if msg != "" {
			m.Msg = msg
		}
		c.JSON(http.StatusOK, m)
		return
	}
	m.Success = false
	if msg != "" {
		m.Msg = msg + " (" + err.Error() + ")"
	} else {
		m.Msg = err.Error()
	}
	logger.Warning(msg+" failed: ", err)
	c.JSON(statusFor(err), m)
}

// pureJsonMsg sends a pure JSON message response with custom status code.
func pureJsonMsg(c *gin.Context, statusCode int, success bool, msg string) {
	c.JSON(statusCode, entity.Msg{
		Success: success,
		Msg:     msg,
	})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case common.IsValidation(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// isAjax checks if the request is an AJAX request.
func isAjax(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}

// parsePage reads the page and perPage query parameters. page defaults to 1
// and accepts -1 for "last page" where the handler supports it.
func parsePage(c *gin.Context, defaultPerPage int) (page, perPage int) {
	page = 1
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			page = n
		}
	}
	perPage = defaultPerPage
	if v := c.Query("perPage"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			perPage = n
		}
	}
	return page, perPage
}
