package models

type ChatRequest struct {
	Message string `json:"message"`
}

func (r *ChatRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Message == "" {
		errors["message"] = "Message is required"
	} else if len(r.Message) > 4000 {
		errors["message"] = "Message is too long"
	}

	return errors
}

type ChatResponse struct {
	Reply string `json:"reply"`
	// Source is "contextual" for rule-based answers, "generated" for model
	// output, "fallback" when the model was unreachable.
	Source string `json:"source"`
}
