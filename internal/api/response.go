package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Success sends a JSON success response
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created sends a JSON success response with status 201
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// Error sends a JSON error response
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// Denied sends an empty 404 response. Used for failed token checks so that
// unauthenticated probes cannot distinguish the agent from a dead endpoint.
func Denied(c *gin.Context) {
	c.Status(http.StatusNotFound)
}
