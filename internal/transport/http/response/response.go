package response

import "github.com/gin-gonic/gin"

const InternalErrorMessage = "internal server error"

type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CreatureResponse struct {
	Message  string   `json:"message"`
	Creature Creature `json:"creature"`
}

type CreatureListResponse struct {
	Count     int        `json:"count"`
	Creatures []Creature `json:"creatures"`
}

func RespondOK(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func RespondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{
		Error: APIError{Code: status, Message: message},
	})
}
