package template

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/scanforge/scanforge/records"
)

const dateLayout = "01/02/2006"

// FieldValues flattens a claim record into the name→string form the field map
// addresses. Checkbox fields read "true"/"false"; service lines expose
// per-row names (svc1_cpt, svc2_charge, ...).
func FieldValues(rec *records.ClaimRecord) map[string]string {
	v := map[string]string{
		"patient_name":    fmt.Sprintf("%s, %s %s", rec.PatientLastName, rec.PatientFirstName, rec.PatientMI),
		"patient_dob":     rec.PatientDOB.Format(dateLayout),
		"patient_sex_m":   strconv.FormatBool(rec.PatientSex == "M"),
		"patient_sex_f":   strconv.FormatBool(rec.PatientSex == "F"),
		"patient_street":  rec.PatientStreet,
		"patient_city":    rec.PatientCity,
		"patient_state":   rec.PatientState,
		"patient_zip":     rec.PatientZip,
		"patient_phone":   rec.PatientPhone,
		"rel_self":        strconv.FormatBool(rec.Relationship == "self"),
		"rel_spouse":      strconv.FormatBool(rec.Relationship == "spouse"),
		"rel_child":       strconv.FormatBool(rec.Relationship == "child"),
		"rel_other":       strconv.FormatBool(rec.Relationship == "other"),
		"insured_name":    fmt.Sprintf("%s, %s %s", rec.InsuredLastName, rec.InsuredFirstName, rec.InsuredMI),
		"insured_id":      rec.InsuredID,
		"group_number":    rec.GroupNumber,
		"plan_name":       rec.PlanName,
		"provider_name":   rec.ProviderName,
		"provider_npi":    rec.ProviderNPI,
		"provider_tax_id": rec.ProviderTaxID,
		"provider_phone":  rec.ProviderPhone,
		"specialty":       rec.Specialty,
		"diagnoses":       strings.Join(rec.Diagnoses, ", "),
		"total_charge":    fmt.Sprintf("%.2f", rec.TotalCharge),
		"amount_paid":     fmt.Sprintf("%.2f", rec.AmountPaid),
		"balance_due":     fmt.Sprintf("%.2f", rec.BalanceDue),
		"patient_signed":  rec.PatientSigned.Format(dateLayout),
		"accept_assign":   strconv.FormatBool(rec.AcceptAssign),
	}

	for i, diag := range rec.Diagnoses {
		v[fmt.Sprintf("diag%d", i+1)] = diag
	}
	for i, line := range rec.ServiceLines {
		p := fmt.Sprintf("svc%d_", i+1)
		v[p+"from"] = line.FromDate.Format(dateLayout)
		v[p+"to"] = line.ToDate.Format(dateLayout)
		v[p+"place"] = line.PlaceCode
		v[p+"cpt"] = line.CPTCode
		v[p+"diag"] = line.Diagnosis
		v[p+"charge"] = fmt.Sprintf("%.2f", line.Charge)
		v[p+"units"] = strconv.Itoa(line.Units)
	}
	return v
}
