package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// zeroAccountLabel stands in for the zero address in text output.
const zeroAccountLabel = "-"

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
	asJSON bool
}

// NewFormatter creates a new formatter. When asJSON is set every Format
// method emits indented JSON instead of aligned text.
func NewFormatter(writer io.Writer, asJSON bool) *Formatter {
	return &Formatter{
		writer: writer,
		asJSON: asJSON,
	}
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatRegistry formats the registry summary.
func (f *Formatter) FormatRegistry(dto RegistryDTO) error {
	if f.asJSON {
		return f.encode(dto)
	}

	w := tabwriter.NewWriter(f.writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", dto.Name)
	fmt.Fprintf(w, "Symbol:\t%s\n", dto.Symbol)
	fmt.Fprintf(w, "Minted:\t%d\n", dto.TotalMinted)
	fmt.Fprintf(w, "Live:\t%d\n", dto.LiveTokens)
	return w.Flush()
}

// FormatToken formats one token.
func (f *Formatter) FormatToken(dto TokenDTO) error {
	if f.asJSON {
		return f.encode(dto)
	}

	w := tabwriter.NewWriter(f.writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Token:\t%d\n", dto.ID)
	fmt.Fprintf(w, "Owner:\t%s\n", orDash(dto.Owner))
	if dto.URI != "" {
		fmt.Fprintf(w, "URI:\t%s\n", dto.URI)
	}
	if dto.Approved != "" {
		fmt.Fprintf(w, "Approved:\t%s\n", dto.Approved)
	}
	return w.Flush()
}

// FormatTokens formats an account's holdings as a table.
func (f *Formatter) FormatTokens(dtos []TokenDTO) error {
	if f.asJSON {
		return f.encode(dtos)
	}

	if len(dtos) == 0 {
		_, err := fmt.Fprintln(f.writer, "no tokens")
		return err
	}

	w := tabwriter.NewWriter(f.writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tOWNER\tAPPROVED\tURI")
	for _, dto := range dtos {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			dto.ID, orDash(dto.Owner), orDash(dto.Approved), orDash(dto.URI))
	}
	return w.Flush()
}

// FormatEvents formats journal entries as a table.
func (f *Formatter) FormatEvents(dtos []EventDTO) error {
	if f.asJSON {
		return f.encode(dtos)
	}

	if len(dtos) == 0 {
		_, err := fmt.Fprintln(f.writer, "no events")
		return err
	}

	w := tabwriter.NewWriter(f.writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tTIME\tTYPE\tDETAILS")
	for _, dto := range dtos {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			dto.Seq, dto.CreatedAt.Format("2006-01-02 15:04:05"), dto.Type, eventDetails(dto))
	}
	return w.Flush()
}

// FormatEvent formats one journal entry, used by follow mode where entries
// stream in one at a time.
func (f *Formatter) FormatEvent(dto EventDTO) error {
	if f.asJSON {
		return f.encode(dto)
	}

	_, err := fmt.Fprintf(f.writer, "%d  %s  %s  %s\n",
		dto.Seq, dto.CreatedAt.Format("15:04:05"), dto.Type, eventDetails(dto))
	return err
}

func eventDetails(dto EventDTO) string {
	switch dto.Type {
	case "transfer":
		return fmt.Sprintf("token %d: %s -> %s", dto.TokenID, orDash(dto.From), orDash(dto.To))
	case "approval":
		return fmt.Sprintf("token %d: %s approved %s", dto.TokenID, orDash(dto.Owner), orDash(dto.Approved))
	case "approval_for_all":
		verb := "revoked"
		if dto.Enabled != nil && *dto.Enabled {
			verb = "granted"
		}
		return fmt.Sprintf("%s %s operator %s", orDash(dto.Owner), verb, orDash(dto.Operator))
	default:
		return ""
	}
}

func orDash(s string) string {
	if s == "" {
		return zeroAccountLabel
	}
	return s
}
