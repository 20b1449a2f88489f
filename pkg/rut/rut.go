// Package rut valida y formatea el RUT chileno (Rol Único Tributario).
package rut

import (
	"fmt"
	"strings"
	"unicode"
)

// Normalize valida el dígito verificador y devuelve el RUT con puntos y guión.
// Acepta "76123451K", "76.123.451-k" o "76123451-K".
func Normalize(s string) (string, error) {
	body, dv, err := split(s)
	if err != nil {
		return "", err
	}
	if expected := CheckDigit(body); expected != dv {
		return "", fmt.Errorf("rut: dígito verificador inválido: esperado %c, recibido %c", expected, dv)
	}
	return Format(body, dv), nil
}

// Valid indica si el RUT tiene un dígito verificador correcto.
func Valid(s string) bool {
	_, err := Normalize(s)
	return err == nil
}

// CheckDigit calcula el dígito verificador (módulo 11, pesos 2..7 de derecha a izquierda).
func CheckDigit(body string) byte {
	sum, weight := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * weight
		if weight == 7 {
			weight = 2
		} else {
			weight++
		}
	}
	switch r := 11 - sum%11; r {
	case 11:
		return '0'
	case 10:
		return 'K'
	default:
		return byte('0' + r)
	}
}

// Format agrupa el cuerpo en miles con puntos: 76.123.451-K.
func Format(body string, dv byte) string {
	var b strings.Builder
	for i, r := range body {
		if i > 0 && (len(body)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte('-')
	b.WriteByte(dv)
	return b.String()
}

// split separa cuerpo numérico y dígito verificador ignorando puntos, guiones y espacios.
func split(s string) (string, byte, error) {
	var clean []byte
	for _, r := range strings.ToUpper(s) {
		switch {
		case unicode.IsDigit(r), r == 'K':
			clean = append(clean, byte(r))
		case r == '.', r == '-', unicode.IsSpace(r):
		default:
			return "", 0, fmt.Errorf("rut: carácter inválido %q", r)
		}
	}
	if len(clean) < 2 {
		return "", 0, fmt.Errorf("rut: se requieren cuerpo y dígito verificador")
	}
	body, dv := string(clean[:len(clean)-1]), clean[len(clean)-1]
	if strings.ContainsRune(body, 'K') {
		return "", 0, fmt.Errorf("rut: la K solo puede ser dígito verificador")
	}
	body = strings.TrimLeft(body, "0")
	if body == "" {
		return "", 0, fmt.Errorf("rut: cuerpo vacío")
	}
	return body, dv, nil
}
