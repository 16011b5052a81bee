package telephony

import (
	"fmt"

	"github.com/twilio/twilio-go/twiml"
)

// TwiMLContentType es el content type que Twilio espera en la respuesta del webhook.
const TwiMLContentType = "text/xml; charset=utf-8"

// MessagingResponse arma el sobre <Response><Message>...</Message></Response>
// con un <Message> por cada texto, respetando el texto tal cual (incluido vacío).
func MessagingResponse(texts ...string) ([]byte, error) {
	verbs := make([]twiml.Element, 0, len(texts))
	for _, t := range texts {
		verbs = append(verbs, &twiml.MessagingMessage{Body: t})
	}
	doc, err := twiml.Messages(verbs)
	if err != nil {
		return nil, fmt.Errorf("render twiml: %w", err)
	}
	return []byte(doc), nil
}
