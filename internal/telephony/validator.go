// Package telephony encapsula el contrato de red con Twilio: validación de firma
// de webhooks, sobre de respuesta TwiML y envío de SMS por la API REST.
package telephony

import (
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strings"

	twclient "github.com/twilio/twilio-go/client"
)

// SignatureHeader es el header donde Twilio envía la firma del request.
const SignatureHeader = "X-Twilio-Signature"

// ErrEmptyAuthToken se devuelve si no hay secreto compartido.
var ErrEmptyAuthToken = errors.New("twilio auth token is empty")

// Validator verifica que un request venga realmente de Twilio.
type Validator struct {
	rv      twclient.RequestValidator
	scheme  string
	baseURL string
}

// NewValidator construye un Validator. scheme es el esquema que ve Twilio al firmar
// (normalmente https detrás de un proxy TLS); baseURL, si no está vacío,
// reemplaza esquema y host completos.
func NewValidator(authToken, scheme, baseURL string) (*Validator, error) {
	if strings.TrimSpace(authToken) == "" {
		return nil, ErrEmptyAuthToken
	}
	if scheme == "" {
		scheme = "https"
	}
	return &Validator{
		rv:      twclient.NewRequestValidator(authToken),
		scheme:  scheme,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Valid compara signature con la firma que Twilio calcularía para url y params.
// Una firma vacía nunca es válida.
func (v *Validator) Valid(rawURL string, params map[string]string, signature string) bool {
	if signature == "" {
		return false
	}
	if params == nil {
		params = map[string]string{}
	}
	return v.rv.Validate(rawURL, params, signature)
}

// ValidRequest valida r usando su URL externa y el form del body.
// r.ParseForm debe haberse llamado antes.
func (v *Validator) ValidRequest(r *http.Request) bool {
	return v.Valid(v.ExternalURL(r), FormParams(r.PostForm), r.Header.Get(SignatureHeader))
}

// ExternalURL reconstruye la URL tal como la firmó Twilio.
func (v *Validator) ExternalURL(r *http.Request) string {
	if v.baseURL != "" {
		return v.baseURL + r.URL.RequestURI()
	}
	return v.scheme + "://" + r.Host + r.URL.RequestURI()
}

// FormParams aplana un form a la forma clave→valor que firma Twilio. Una clave
// repetida firma cada valor, ordenado, precedido por la clave; como el validador
// concatena clave+valor, eso equivale a unir los valores usando la clave.
func FormParams(form url.Values) map[string]string {
	params := make(map[string]string, len(form))
	for k, vals := range form {
		switch len(vals) {
		case 0:
		case 1:
			params[k] = vals[0]
		default:
			sorted := append([]string(nil), vals...)
			sort.Strings(sorted)
			params[k] = strings.Join(sorted, k)
		}
	}
	return params
}
