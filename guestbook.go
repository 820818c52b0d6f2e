package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type createEntryRequest struct {
	Name      string  `json:"name" binding:"required,notblank,max=80"`
	Message   string  `json:"message" binding:"required,notblank,max=2000"`
	Signature *string `json:"signature" binding:"omitempty,imagedataurl"`
}

// GET /api/guestbook
func (s *server) listEntries(c *gin.Context) {
	entries, err := s.store.ListEntries(c.Request.Context())
	if err != nil {
		s.internalError(c, err, "Failed to fetch guestbook entries")
		return
	}
	c.JSON(http.StatusOK, entries)
}

// POST /api/guestbook
func (s *server) createEntry(c *gin.Context) {
	var req createEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingErrorMessage(err)})
		return
	}
	if req.Signature != nil && *req.Signature != "" {
		img, err := decodeSignature(*req.Signature)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if len(img.Data) > s.cfg.MaxSignatureBytes {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("signature must be at most %d bytes", s.cfg.MaxSignatureBytes),
			})
			return
		}
	}

	entry, err := s.store.CreateEntry(c.Request.Context(), EntryDraft{
		Name:      req.Name,
		Message:   req.Message,
		Signature: req.Signature,
	})
	if err != nil {
		s.internalError(c, err, "Failed to create guestbook entry")
		return
	}

	recordEntryCreated(entry)
	s.log.Info().
		Str("request_id", requestID(c)).
		Int64("entry_id", entry.ID).
		Bool("signed", entry.Signature != nil).
		Str("visitor", s.privacy.Hash(c.ClientIP())).
		Msg("guestbook entry created")
	c.JSON(http.StatusCreated, entry)
}

// GET /api/guestbook/:id
func (s *server) getEntry(c *gin.Context) {
	entry, ok := s.lookupEntry(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, entry)
}

// GET /api/guestbook/:id/signature
func (s *server) getEntrySignature(c *gin.Context) {
	entry, ok := s.lookupEntry(c)
	if !ok {
		return
	}
	if entry.Signature == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry has no signature"})
		return
	}
	img, err := decodeSignature(*entry.Signature)
	if err != nil {
		s.internalError(c, err, "Failed to decode signature")
		return
	}
	// entries never change, so neither does the image
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, img.ContentType(), img.Data)
}

// lookupEntry resolves the :id path parameter and writes the error response
// itself when it cannot.
func (s *server) lookupEntry(c *gin.Context) (*GuestbookEntry, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return nil, false
	}
	entry, err := s.store.GetEntry(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
			return nil, false
		}
		s.internalError(c, err, "Failed to fetch guestbook entry")
		return nil, false
	}
	return entry, true
}
