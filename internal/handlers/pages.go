package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func IndexPage(c *gin.Context) {
	render(c, http.StatusOK, "index.html", gin.H{
		"isAuthed": currentUser(c) != nil,
	})
}

func NoPermission(c *gin.Context) {
	render(c, http.StatusOK, "no_permission.html", gin.H{"title": "No Permission"})
}

func NoRoute(c *gin.Context) {
	renderError(c, http.StatusNotFound, "The page you requested does not exist.")
}
