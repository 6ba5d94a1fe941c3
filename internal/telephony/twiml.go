// Package telephony provides the Twilio outbound-call client and a typed
// builder for the TwiML voice-control documents the webhook handlers return.
package telephony

import (
	"encoding/xml"
	"fmt"
)

// Say speaks text to the caller.
type Say struct {
	XMLName xml.Name `xml:"Say"`
	Text    string   `xml:",chardata"`
}

// Redirect transfers call control to another webhook URL.
type Redirect struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr,omitempty"`
	URL     string   `xml:",chardata"`
}

// Record records the caller and reports the recording to Action; the
// transcription, if any, arrives later at TranscribeCallback.
type Record struct {
	XMLName            xml.Name `xml:"Record"`
	Action             string   `xml:"action,attr"`
	Method             string   `xml:"method,attr"`
	Timeout            int      `xml:"timeout,attr"`
	Transcribe         bool     `xml:"transcribe,attr"`
	TranscribeCallback string   `xml:"transcribeCallback,attr"`
	PlayBeep           bool     `xml:"playBeep,attr"`
	FinishOnKey        string   `xml:"finishOnKey,attr"`
}

// Hangup ends the call.
type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// VoiceResponse is a TwiML <Response> document. Verbs execute in order.
type VoiceResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

// NewVoiceResponse creates an empty voice response document.
func NewVoiceResponse() *VoiceResponse {
	return &VoiceResponse{}
}

// Say appends a spoken message.
func (v *VoiceResponse) Say(text string) *VoiceResponse {
	v.Verbs = append(v.Verbs, Say{Text: text})
	return v
}

// Redirect appends a POST redirect to another webhook.
func (v *VoiceResponse) Redirect(url string) *VoiceResponse {
	v.Verbs = append(v.Verbs, Redirect{Method: "POST", URL: url})
	return v
}

// Record appends a record-and-transcribe instruction. The action URL
// receives the synchronous recording callback; the transcribe callback
// receives the transcription asynchronously.
func (v *VoiceResponse) Record(actionURL, transcribeCallbackURL string) *VoiceResponse {
	v.Verbs = append(v.Verbs, Record{
		Action:             actionURL,
		Method:             "POST",
		Timeout:            10,
		Transcribe:         true,
		TranscribeCallback: transcribeCallbackURL,
		PlayBeep:           true,
		FinishOnKey:        "#",
	})
	return v
}

// Hangup appends a hang-up instruction.
func (v *VoiceResponse) Hangup() *VoiceResponse {
	v.Verbs = append(v.Verbs, Hangup{})
	return v
}

// Render marshals the document with the XML declaration Twilio expects.
func (v *VoiceResponse) Render() ([]byte, error) {
	body, err := xml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal TwiML: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}
