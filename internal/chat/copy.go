package chat

import (
	"strings"

	"github.com/ashureev/adolai/internal/chatapi"
)

// Greeting opens every new conversation.
const Greeting = "Hi there! I'm here to help answer your health questions. You can ask me anything about nutrition, fitness, mental health, or growing up. Click on a popular question below or type your own!"

const fallbackCopy = "Sorry, I'm having trouble responding right now. Please try again."

// ErrorCopy returns the bot-bubble text shown for a failed upstream call.
func ErrorCopy(err error) string {
	switch chatapi.KindOf(err) {
	case chatapi.KindTimeout:
		return "⚠️ Request timeout - server took too long to respond. Please try again."
	case chatapi.KindNetwork:
		return "🔌 Network error - unable to connect to server. Please check your connection."
	case chatapi.KindServer:
		return "🔧 Server error - please try again in a moment."
	case chatapi.KindUnavailable:
		return "🔧 Service temporarily unavailable - please try again later."
	case chatapi.KindRateLimited:
		return "⏱️ Too many requests - please wait a moment before trying again."
	case chatapi.KindValidation:
		return validationCopy(chatapi.DetailOf(err))
	default:
		return fallbackCopy
	}
}

func validationCopy(detail string) string {
	switch {
	case detail == "":
		return "Invalid request - please try rephrasing your message."
	case strings.Contains(detail, "inappropriate content"):
		return "⚠️ Please keep conversations appropriate and friendly."
	case strings.Contains(detail, "Message cannot be empty"):
		return "📝 Please enter a message before sending."
	case strings.Contains(detail, "Message too long"):
		return "📏 Your message is too long. Please keep it under 1000 characters."
	default:
		return "❌ " + detail
	}
}
