package contact

import (
	"net/url"
	"strings"
)

const baseURL = "https://wa.me/"

type MessageType string

const (
	Business  MessageType = "business"
	Portfolio MessageType = "portfolio"
	General   MessageType = "general"
)

// Messages are the pre-filled chat openers, keyed by enquiry type.
var Messages = map[MessageType]string{
	Business:  "Halo Natah Genesis! Saya punya bisnis dan lagi cari website yang simpel tapi profesional. Saya lihat layanannya menarik, boleh jelasin paket dan estimasi biayanya?",
	Portfolio: "Halo Natah Genesis! Saya ingin bikin website portfolio untuk keperluan kerja/freelance. Bisa jelasin alurnya dan apa saja yang saya dapatkan?",
	General:   "Halo Natah Genesis! Saya tertarik konsultasi soal pembuatan website. Pengen tanya-tanya dulu, apakah bisa dibantu?",
}

// Links builds wa.me deep links for one phone number.
type Links struct {
	number string
}

func NewLinks(number string) *Links {
	return &Links{number: strings.TrimPrefix(strings.TrimSpace(number), "+")}
}

// URL returns the chat link for kind. Unknown kinds use the general message.
func (l *Links) URL(kind string) string {
	msg, ok := Messages[MessageType(strings.ToLower(strings.TrimSpace(kind)))]
	if !ok {
		msg = Messages[General]
	}
	// wa.me wants %20 rather than + for spaces
	text := strings.ReplaceAll(url.QueryEscape(msg), "+", "%20")
	return baseURL + l.number + "?text=" + text
}
