package services

import (
	"context"
	"log"
	"strings"

	"github.com/limbahku/backend/internal/models"
)

const assistantContextPrompt = `You are LimbahKu's friendly assistant. LimbahKu is a platform in Indonesia where people can sell recyclable waste (paper, plastic, metal, electronics, cooking-oil, organic-waste, rubber, glass, textile) to verified collectors.
Your name is Limbi. Answer in english please.
User question: `

const assistantFallbackReply = "I'm having trouble connecting right now. Please try again in a moment, or contact our support team for immediate assistance."

// AssistantService answers chat-widget questions. Known topics get canned
// contextual answers without touching the model; everything else goes to the
// text generator, and a generator failure degrades to a canned reply instead
// of an error.
type AssistantService struct {
	generator TextGenerator
}

func NewAssistantService(generator TextGenerator) *AssistantService {
	return &AssistantService{generator: generator}
}

func (s *AssistantService) Reply(ctx context.Context, message string) models.ChatResponse {
	if reply := contextualReply(message); reply != "" {
		return models.ChatResponse{Reply: reply, Source: "contextual"}
	}

	text, err := s.generator.GenerateText(ctx, assistantContextPrompt+message)
	if err != nil {
		log.Printf("[assistant] generation failed: %v", err)
		return models.ChatResponse{Reply: assistantFallbackReply, Source: "fallback"}
	}
	return models.ChatResponse{Reply: text, Source: "generated"}
}

// contextualReply returns a canned answer for well-known topics, or "" when
// the message should go to the model. Keyword order matters: greetings first,
// then the more specific topics.
func contextualReply(message string) string {
	m := strings.ToLower(message)

	contains := func(keywords ...string) bool {
		for _, k := range keywords {
			if strings.Contains(m, k) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("hello", "hi", "hey"):
		return "Hello! I'm Limbi, your friendly assistant. How can I help you today? \U0001F331"
	case contains("app", "application", "platform"):
		return "LimbahKu is a platform in Indonesia where you can sell recyclable waste like paper, plastic, metal, electronics, and more to verified collectors. It's easy to use and helps you earn money while keeping the environment clean! \U0001F30D"
	case contains("sell", "seller"):
		return "To sell your waste on LimbahKu: 1) Register or login 2) Go to your dashboard and open the marketplace 3) Select the type of waste you want to sell 4) Input the weight (minimum applies per waste type) 5) Confirm the request and wait for buyer approval 6) After pickup, your balance will be updated. Need help starting?"
	case contains("register", "sign up", "account"):
		return "You can register with Google or email. After signing up, choose your role (seller or buyer), and set your pickup/delivery address. It only takes a few minutes to get started!"
	case contains("login", "sign in"):
		return "You can login with your Google account or email and password. If you're new, just click Register to create a free account."
	case contains("pickup", "collect"):
		return "After your waste is approved by a buyer, a courier will come to your address to validate and collect the items. The waste will then be delivered to the buyer's warehouse safely."
	case contains("price", "cost", "money"):
		return "Each waste type has a different market price. After your waste is picked up, your balance will be credited accordingly. You can withdraw your earnings at any time."
	case contains("type", "waste"):
		return "You can sell various waste types on LimbahKu, including: paper, plastic, metal, e-waste, organic waste, textile, rubber, glass, and used cooking oil."
	case contains("collector", "buyer", "buy"):
		return "Buyers can also register and login to request specific waste from sellers. After confirming a request, they'll get matched and notified when a seller submits a transaction."
	case contains("location", "area"):
		return "LimbahKu currently operates across major cities in Indonesia. During registration, set your address so we can connect you with buyers or sellers nearby."
	}
	return ""
}
