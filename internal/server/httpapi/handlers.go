package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/messagely/internal/common"
	"github.com/dmitrijs2005/messagely/internal/server/access"
	"github.com/dmitrijs2005/messagely/internal/server/models"
	"github.com/dmitrijs2005/messagely/internal/server/services"
	"github.com/gin-gonic/gin"
)

// --- response shapes ---

type personJSON struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

type userJSON struct {
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       string    `json:"phone"`
	JoinAt      time.Time `json:"join_at"`
	LastLoginAt time.Time `json:"last_login_at"`
}

type userSummaryJSON struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type messageJSON struct {
	ID           string    `json:"id"`
	FromUsername string    `json:"from_username"`
	ToUsername   string    `json:"to_username"`
	Body         string    `json:"body"`
	SentAt       time.Time `json:"sent_at"`
}

type messageDetailJSON struct {
	ID       string     `json:"id"`
	FromUser personJSON `json:"from_user"`
	ToUser   personJSON `json:"to_user"`
	Body     string     `json:"body"`
	SentAt   time.Time  `json:"sent_at"`
	ReadAt   *time.Time `json:"read_at"`
}

type conversationMessageJSON struct {
	ID          string     `json:"id"`
	Counterpart personJSON `json:"counterpart"`
	Body        string     `json:"body"`
	SentAt      time.Time  `json:"sent_at"`
	ReadAt      *time.Time `json:"read_at"`
}

type readReceiptJSON struct {
	ID     string    `json:"id"`
	ReadAt time.Time `json:"read_at"`
}

func toPersonJSON(p models.Person) personJSON {
	return personJSON{Username: p.Username, FirstName: p.FirstName, LastName: p.LastName, Phone: p.Phone}
}

func toDetailJSON(d *models.MessageDetail) messageDetailJSON {
	return messageDetailJSON{
		ID:       d.ID,
		FromUser: toPersonJSON(d.From),
		ToUser:   toPersonJSON(d.To),
		Body:     d.Body,
		SentAt:   d.SentAt,
		ReadAt:   d.ReadAt,
	}
}

func toConversationJSON(list []models.ConversationMessage) []conversationMessageJSON {
	out := make([]conversationMessageJSON, 0, len(list))
	for _, m := range list {
		out = append(out, conversationMessageJSON{
			ID:          m.ID,
			Counterpart: toPersonJSON(m.Counterpart),
			Body:        m.Body,
			SentAt:      m.SentAt,
			ReadAt:      m.ReadAt,
		})
	}
	return out
}

// writeError maps domain sentinels to stable status codes.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, common.ErrorUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, common.ErrorDuplicateUser):
		c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
	case errors.Is(err, common.ErrorBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// --- auth routes ---

func (s *HTTPServer) handleRegister(c *gin.Context) {
	var payload struct {
		Username  string `json:"username"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, common.ErrorBadRequest)
		return
	}

	user, err := s.users.Register(c.Request.Context(), services.RegisterRequest{
		Username:  payload.Username,
		Password:  payload.Password,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Phone:     payload.Phone,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := s.users.TokenFor(user.Username)
	if err != nil {
		writeError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "user registered", "username", user.Username)
	c.JSON(http.StatusCreated, gin.H{"token": token})
}

func (s *HTTPServer) handleLogin(c *gin.Context) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, common.ErrorBadRequest)
		return
	}

	token, err := s.users.Login(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// --- user routes ---

func (s *HTTPServer) handleListUsers(c *gin.Context) {
	list, err := s.users.All(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]userSummaryJSON, 0, len(list))
	for _, u := range list {
		out = append(out, userSummaryJSON{Username: u.Username, FirstName: u.FirstName, LastName: u.LastName})
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

// handleGetUser serves a full profile; users may only read their own.
func (s *HTTPServer) handleGetUser(c *gin.Context) {
	username := c.Param("username")
	if identityFrom(c) != username {
		writeError(c, common.ErrorUnauthorized)
		return
	}

	user, err := s.users.Get(c.Request.Context(), username)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userJSON{
		Username:    user.Username,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Phone:       user.Phone,
		JoinAt:      user.JoinAt,
		LastLoginAt: user.LastLoginAt,
	}})
}

func (s *HTTPServer) handleMessagesFrom(c *gin.Context) {
	username := c.Param("username")
	if identityFrom(c) != username {
		writeError(c, common.ErrorUnauthorized)
		return
	}

	list, err := s.users.MessagesFrom(c.Request.Context(), username)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": toConversationJSON(list)})
}

func (s *HTTPServer) handleMessagesTo(c *gin.Context) {
	username := c.Param("username")
	if identityFrom(c) != username {
		writeError(c, common.ErrorUnauthorized)
		return
	}

	list, err := s.users.MessagesTo(c.Request.Context(), username)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": toConversationJSON(list)})
}

// --- message routes ---

// handleCreateMessage posts a message from the authenticated identity.
func (s *HTTPServer) handleCreateMessage(c *gin.Context) {
	var payload struct {
		ToUsername string `json:"to_username"`
		Body       string `json:"body"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, common.ErrorBadRequest)
		return
	}

	msg, err := s.messages.Create(c.Request.Context(), identityFrom(c), payload.ToUsername, payload.Body)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": messageJSON{
		ID:           msg.ID,
		FromUsername: msg.FromUsername,
		ToUsername:   msg.ToUsername,
		Body:         msg.Body,
		SentAt:       msg.SentAt,
	}})
}

// handleGetMessage serves the detail to the sender or the recipient only.
func (s *HTTPServer) handleGetMessage(c *gin.Context) {
	detail, err := s.messages.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	if !access.CanView(identityFrom(c), detail) {
		writeError(c, common.ErrorUnauthorized)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": toDetailJSON(detail)})
}

// handleMarkRead lets only the recipient acknowledge a message.
func (s *HTTPServer) handleMarkRead(c *gin.Context) {
	id := c.Param("id")

	detail, err := s.messages.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	if !access.CanMarkRead(identityFrom(c), detail) {
		writeError(c, common.ErrorUnauthorized)
		return
	}

	receipt, err := s.messages.MarkRead(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": readReceiptJSON{ID: receipt.ID, ReadAt: receipt.ReadAt}})
}
