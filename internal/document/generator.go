// Package document generates legal document drafts locally. No backend call
// is involved; the draft records the chosen type and the form data.
package document

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lexai-app/lexai/internal/errors"
)

// Type is a kind of document the generator can draft.
type Type struct {
	ID   string
	Name string
}

var types = []Type{
	{ID: "contrato_compraventa", Name: "Contrato de Compraventa"},
	{ID: "contrato_alquiler", Name: "Contrato de Alquiler"},
	{ID: "testamento", Name: "Testamento"},
	{ID: "poder_notarial", Name: "Poder Notarial"},
	{ID: "demanda_civil", Name: "Demanda Civil"},
}

// Types returns the supported document types in display order.
func Types() []Type {
	out := make([]Type, len(types))
	copy(out, types)
	return out
}

// Lookup finds a type by id.
func Lookup(id string) (Type, bool) {
	for _, t := range types {
		if t.ID == id {
			return t, true
		}
	}
	return Type{}, false
}

// Fields is the form filled in for every document type. Empty fields are left
// out of the draft.
type Fields struct {
	ParteA  string `json:"parteA,omitempty"`
	ParteB  string `json:"parteB,omitempty"`
	Importe string `json:"importe,omitempty"`
	Fecha   string `json:"fecha,omitempty"`
}

// Document is a generated draft.
type Document struct {
	Type    Type
	Title   string
	Content string
	Date    time.Time
}

// DateString formats the generation date as day/month/year.
func (d *Document) DateString() string {
	return d.Date.Format("02/01/2006")
}

// Generate drafts a document of type typeID. Only the type is required.
func Generate(typeID string, fields Fields, now time.Time) (*Document, error) {
	t, ok := Lookup(typeID)
	if !ok {
		return nil, errors.NewValidationError("type", fmt.Sprintf("tipo de documento desconocido: %q", typeID))
	}

	data, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode form data: %w", err)
	}

	var b strings.Builder
	b.WriteString("Este es un documento legal generado automáticamente por LexAI.\n\n")
	fmt.Fprintf(&b, "Tipo: %s\n\n", t.Name)
	b.WriteString("Datos del formulario:\n")
	b.Write(data)
	b.WriteString("\n\n[Contenido del documento legal...]")

	return &Document{
		Type:    t,
		Title:   t.Name + " - Generado",
		Content: b.String(),
		Date:    now,
	}, nil
}
