package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestConversationSession_Clone tests transcript snapshot independence
func TestConversationSession_Clone(t *testing.T) {
	session := ConversationSession{
		ID:     "sess-1",
		Status: SessionActive,
		Messages: []Message{
			{ID: "m1", Sender: SenderAssistant, Content: "Hello", SentAt: time.Now()},
		},
	}

	snapshot := session.Clone()
	session.Messages = append(session.Messages, Message{ID: "m2", Sender: SenderUser})

	assert.Len(t, snapshot.Messages, 1)
	assert.Len(t, session.Messages, 2)
	assert.Equal(t, SessionActive, snapshot.Status)
}

// TestSessionStatus_Values tests the lifecycle state constants
func TestSessionStatus_Values(t *testing.T) {
	assert.Equal(t, SessionStatus("idle"), SessionIdle)
	assert.Equal(t, SessionStatus("starting"), SessionStarting)
	assert.Equal(t, SessionStatus("active"), SessionActive)
	assert.Equal(t, SessionStatus("sending"), SessionSending)
	assert.Equal(t, SessionStatus("ending_confirmation"), SessionEndingConfirmation)
	assert.Equal(t, SessionStatus("ended"), SessionEnded)
}
