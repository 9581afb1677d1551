package handlers

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freelancehub/backend/internal/models"
	"github.com/freelancehub/backend/internal/services/inbox"
	"github.com/freelancehub/backend/internal/services/messaging"
)

type ChatHandler struct {
	DB        *gorm.DB
	Messages  *messaging.Service
	Inbox     *inbox.Service
	UploadDir string
	BaseURL   string
}

func NewChatHandler(db *gorm.DB, ms *messaging.Service, is *inbox.Service, uploadDir, baseURL string) *ChatHandler {
	return &ChatHandler{DB: db, Messages: ms, Inbox: is, UploadDir: uploadDir, BaseURL: baseURL}
}

// GetInbox returns the derived conversation list: one row per partner, most
// recently messaged first, proposal-only contacts at the end.
func (h *ChatHandler) GetInbox(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return err
	}

	conversations, err := h.Inbox.ListConversations(*user)
	if err != nil {
		log.Println("Error listing conversations:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch conversations",
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": conversations})
}

// GetThread returns the full message history with one partner, oldest first.
func (h *ChatHandler) GetThread(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return err
	}

	partner, err := h.partnerByUsername(c.Params("username"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "User not found",
		})
	}

	msgs, err := h.Messages.Conversation(user.ID, partner.ID)
	if err != nil {
		log.Println("Error fetching messages:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch messages",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"partner": UserMini{
				ID:          partner.ID.String(),
				Username:    partner.Username,
				DisplayName: partner.DisplayName,
			},
			"messages": msgs,
		},
	})
}

// SendMessage appends a message to the pair's log. Accepts JSON
// ({"text": ...}) or multipart with an optional "attachment" file.
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	user, err := currentUser(c, h.DB)
	if err != nil {
		return err
	}

	partner, err := h.partnerByUsername(c.Params("username"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "User not found",
		})
	}

	text := ""
	attachmentURL := ""

	if strings.HasPrefix(c.Get("Content-Type"), "multipart/form-data") {
		text = strings.TrimSpace(c.FormValue("text"))

		if file, err := c.FormFile("attachment"); err == nil && file != nil {
			if file.Size > 25*1024*1024 {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"success": false,
					"message": "Attachment exceeds 25MB limit",
				})
			}

			ext := filepath.Ext(file.Filename)
			filename := uuid.New().String() + ext
			dir := filepath.Join(h.UploadDir, "attachments")
			if err := os.MkdirAll(dir, 0755); err != nil {
				log.Println("Error creating attachment dir:", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"success": false,
					"message": "Failed to save attachment",
				})
			}

			if err := c.SaveFile(file, filepath.Join(dir, filename)); err != nil {
				log.Println("Error saving attachment:", err)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"success": false,
					"message": "Failed to save attachment",
				})
			}

			attachmentURL = "/uploads/attachments/" + filename
			if h.BaseURL != "" {
				attachmentURL = strings.TrimRight(h.BaseURL, "/") + attachmentURL
			}
		}
	} else {
		var req struct {
			Text string `json:"text"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body",
			})
		}
		text = strings.TrimSpace(req.Text)
	}

	msg, err := h.Messages.Send(*user, partner.ID, text, attachmentURL, nil)
	if err != nil {
		return serviceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    msg,
	})
}

func (h *ChatHandler) partnerByUsername(raw string) (*models.User, error) {
	username := strings.TrimSpace(raw)

	var partner models.User
	if err := h.DB.Where("username = ?", username).First(&partner).Error; err != nil {
		return nil, err
	}
	return &partner, nil
}
