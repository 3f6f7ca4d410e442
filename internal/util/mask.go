package util

import "strings"

// MaskSecret enmascara una credencial para diagnósticos.
// Deja visibles como máximo los primeros 4 caracteres; el resto se reemplaza.
// Nunca retorna el valor completo, sin importar el largo.
func MaskSecret(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "…" + "***"
}

// MaskBearer enmascara un header Authorization completo conservando el scheme.
// "Bearer eyJhbGci..." → "Bearer eyJh…***"
func MaskBearer(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	scheme, rest, ok := strings.Cut(header, " ")
	if !ok {
		return MaskSecret(header)
	}
	return scheme + " " + MaskSecret(rest)
}

// MaskBasicPair enmascara user:pass para logs. El usuario se conserva
// parcialmente, la contraseña nunca.
func MaskBasicPair(username string) string {
	username = strings.TrimSpace(username)
	if username == "" {
		return "***:***"
	}
	if len(username) <= 2 {
		return "***:***"
	}
	return username[:2] + "…:***"
}
