package share

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhatsApp(t *testing.T) {
	got := WhatsApp("Hola mundo", "https://torneo.app")
	assert.Equal(t, "https://wa.me/?text=Hola%20mundo%20https%3A%2F%2Ftorneo.app", got)
}

func TestFacebook(t *testing.T) {
	got := Facebook("https://torneo.app/?a=1&b=2")
	assert.Equal(t, "https://www.facebook.com/sharer/sharer.php?u=https%3A%2F%2Ftorneo.app%2F%3Fa%3D1%26b%3D2", got)
}

func TestInstagram(t *testing.T) {
	assert.Equal(t, "https://www.instagram.com/?url=https%3A%2F%2Fimg.example%2Fa.jpg", Instagram("https://img.example/a.jpg"))
}

func TestPhotoLinks(t *testing.T) {
	links := PhotoLinks("Jugadores en el campo", "https://img.example/a.jpg")
	assert.Len(t, links, 3)
	assert.Equal(t, "whatsapp", links[0].Network)
	assert.Contains(t, links[0].URL, "Mira%20esta%20foto%20del%20torneo%3A%20Jugadores%20en%20el%20campo")
}

func TestSiteLinks(t *testing.T) {
	links := SiteLinks("Mira", "https://torneo.app")
	assert.Len(t, links, 2)
	assert.Equal(t, "https://www.facebook.com/sharer/sharer.php?u=https%3A%2F%2Ftorneo.app", links[1].URL)
}
