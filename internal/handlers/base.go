package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"threadline/internal/apperr"
	"threadline/internal/identity"
	"threadline/internal/middleware"
	"threadline/internal/store"
	"threadline/internal/utils"
)

const pageSize = 30

// pathID parses a positive id from the named route parameter. On failure
// the error response is already written.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := identity.ParseID(c.Param(name))
	if err != nil {
		middleware.RespondError(c, err)
		return 0, false
	}
	return id, true
}

// bind decodes the JSON body into req, answering 422 when it does not fit.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.RespondError(c, apperr.Validation("%s", err.Error()))
		return false
	}
	return true
}

// pageFilter reads sort and page from the query string.
func pageFilter(c *gin.Context) (store.PostFilter, int) {
	page := utils.ParsePage(c.Query("page"))
	return store.PostFilter{
		Sort:   c.DefaultQuery("sort", store.SortNew),
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}, page
}

func isNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}

// Health is the liveness probe.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
