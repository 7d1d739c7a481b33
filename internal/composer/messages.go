package composer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/opalia-labs/palmares/internal/analyst"
	"github.com/opalia-labs/palmares/internal/ranking"
)

// User-facing texts. The service answers in French regardless of the
// language the question came in.
const (
	// MsgTryAgain is the reply when an upstream dependency stayed down
	// through its retries.
	MsgTryAgain = "Une erreur est survenue. Merci de réessayer dans quelques instants."

	msgNoResults      = "Aucun résultat trouvé."
	msgForeignCity    = "Le palmarès ne couvre que les établissements situés en France. Pouvez-vous préciser une ville française ?"
	msgClarifyDefault = "Pouvez-vous préciser votre demande ?"
)

// emptyResult names the filters that matched nothing, so the same query
// always gets the same reply.
func emptyResult(f ranking.FilterSpec) string {
	var parts []string
	if f.Specialty != "" {
		parts = append(parts, "pour la pathologie "+f.Specialty)
	}
	if f.Category != "" {
		parts = append(parts, "dans le secteur "+strings.ToLower(f.Category))
	}
	if f.City != "" {
		parts = append(parts, "autour de "+f.City)
	}
	if len(parts) == 0 {
		return msgNoResults
	}
	return fmt.Sprintf("Aucun résultat trouvé %s.", strings.Join(parts, " "))
}

// rankAnswer words an institution rank lookup from its table row.
func rankAnswer(res ranking.QueryResult) string {
	f := res.Filters
	if len(res.Rows) == 0 {
		if f.Specialty == "" {
			return fmt.Sprintf("%s ne fait pas partie des meilleurs établissements du palmarès général.", f.Institution)
		}
		return fmt.Sprintf("%s n'est pas présent dans le classement pour la pathologie %s.", f.Institution, f.Specialty)
	}
	row := res.Rows[0]
	table := "du palmarès général"
	if row.Specialty != "" {
		table = "du palmarès " + row.Specialty
	}
	answer := fmt.Sprintf("%s est classé n°%d %s, avec une note de %s/20.", row.Institution, row.Rank, table, formatScore(row.Score))
	if len(res.Links) > 0 {
		answer += "\n" + linksLine(res.Links)
	}
	return answer
}

// resultHeader is the canned lead-in used when the model cannot provide
// one.
func resultHeader(res ranking.QueryResult) string {
	f := res.Filters
	var head string
	if len(res.Rows) == 1 {
		head = "Voici le meilleur établissement"
	} else {
		head = fmt.Sprintf("Voici les %d meilleurs établissements", len(res.Rows))
	}
	if res.Truncated {
		head += fmt.Sprintf(" (sur %d)", res.Total)
	}
	if f.Specialty != "" {
		head += " pour la pathologie " + f.Specialty
	}
	if f.City != "" {
		head += " autour de " + f.City
		if res.RadiusKm > 0 {
			head += fmt.Sprintf(" (rayon de %d km)", res.RadiusKm)
		}
	}
	return head + " :"
}

// rowsBlock renders row data verbatim: establishment, sector, city,
// score, then the backing pages.
func rowsBlock(res ranking.QueryResult) string {
	var sb strings.Builder
	for i, row := range res.Rows {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d. %s (%s, %s) : note %s/20", i+1, row.Institution, strings.ToLower(row.Category), row.City, formatScore(row.Score))
	}
	if len(res.Links) > 0 {
		sb.WriteString("\n")
		sb.WriteString(linksLine(res.Links))
	}
	return sb.String()
}

func linksLine(links []string) string {
	if len(links) == 1 {
		return "Classement complet : " + links[0]
	}
	return "Classements complets : " + strings.Join(links, ", ")
}

func formatScore(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}

// clarify words the question for a pending facet.
func clarify(facet string, v analyst.FacetValue) string {
	switch {
	case v.Reason == analyst.ReasonForeign:
		return msgForeignCity
	case v.Reason == analyst.ReasonUnknownInst:
		return fmt.Sprintf("Je ne trouve pas l'établissement «%s» dans le palmarès. Pouvez-vous vérifier son nom ?", v.Value)
	case facet == analyst.FacetLocation && len(v.Candidates) > 0:
		return fmt.Sprintf("Plusieurs villes correspondent à «%s» : %s. Laquelle vouliez-vous ?", v.Value, strings.Join(v.Candidates, ", "))
	case facet == analyst.FacetSpecialty && len(v.Candidates) > 0:
		return fmt.Sprintf("Plusieurs spécialités peuvent correspondre à «%s» : %s. Pouvez-vous préciser ?", v.Value, strings.Join(v.Candidates, ", "))
	case len(v.Candidates) > 0:
		return fmt.Sprintf("Plusieurs valeurs sont possibles : %s. Pouvez-vous préciser ?", strings.Join(v.Candidates, ", "))
	}
	return msgClarifyDefault
}
