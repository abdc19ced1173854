package site

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignInURL(t *testing.T) {
	p := NewPortal(nil, Config{BaseURL: "https://ais.usvisa-info.com/", Locale: "es-cr"}, nil)
	assert.Equal(t, "https://ais.usvisa-info.com/es-cr/niv/users/sign_in", p.SignInURL())
}

func TestNewPortal_DefaultTimeouts(t *testing.T) {
	p := NewPortal(nil, Config{}, nil)
	assert.Positive(t, p.cfg.LoginTimeout)
	assert.Positive(t, p.cfg.ElementTimeout)
}

func TestExactText(t *testing.T) {
	re := regexp.MustCompile(exactText("Continuar"))
	assert.True(t, re.MatchString("Continuar"))
	assert.True(t, re.MatchString("  Continuar \n"))
	assert.False(t, re.MatchString("Continuar pago"))

	re = regexp.MustCompile(exactText("Pay (now)"))
	assert.True(t, re.MatchString("Pay (now)"))
}

func TestXPathLiteral(t *testing.T) {
	assert.Equal(t, `'Reprogramar cita'`, xpathLiteral("Reprogramar cita"))
	assert.Equal(t, `"Don't"`, xpathLiteral("Don't"))
	assert.Equal(t, `concat('a', "'", 'b"c')`, xpathLiteral(`a'b"c`))
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "Mayo 2025", normalizeTitle("Mayo 2025"))
	assert.Equal(t, "Junio 2025", normalizeTitle("  Junio \n 2025 "))
}
