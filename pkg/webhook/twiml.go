package webhook

import "encoding/xml"

// Minimal TwiML vocabulary for a gather-based voice flow. The provider
// expects Content-Type: text/xml. Verb order follows struct field order.
type twimlResponse struct {
	XMLName xml.Name     `xml:"Response"`
	Say     *twimlSay    `xml:"Say,omitempty"`
	Play    *twimlPlay   `xml:"Play,omitempty"`
	Gather  *twimlGather `xml:"Gather,omitempty"`
	Dial    *twimlDial   `xml:"Dial,omitempty"`
	Hangup  *twimlHangup `xml:"Hangup,omitempty"`
}

type twimlSay struct {
	Voice string `xml:"voice,attr,omitempty"`
	Text  string `xml:",chardata"`
}

type twimlPlay struct {
	URL string `xml:",chardata"`
}

type twimlGather struct {
	Input   string     `xml:"input,attr"`
	Action  string     `xml:"action,attr"`
	Timeout int        `xml:"timeout,attr"`
	Say     *twimlSay  `xml:"Say,omitempty"`
	Play    *twimlPlay `xml:"Play,omitempty"`
}

type twimlDial struct {
	Number string `xml:",chardata"`
}

type twimlHangup struct{}

// render serializes a TwiML document with the XML header.
func render(resp twimlResponse) ([]byte, error) {
	out, err := xml.MarshalIndent(resp, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
