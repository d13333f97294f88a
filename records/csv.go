package records

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const dateLayout = "01/02/2006"

// csvHeader is the stable export column order, one row per record.
var csvHeader = []string{
	"ulid", "patient_last", "patient_first", "patient_mi", "patient_dob",
	"patient_sex", "patient_street", "patient_city", "patient_state",
	"patient_zip", "patient_phone", "relationship", "insured_last",
	"insured_first", "insured_id", "group_number", "plan_name",
	"provider_name", "provider_npi", "provider_tax_id", "provider_phone",
	"specialty", "diagnoses", "service_lines", "total_charge", "amount_paid",
	"balance_due", "accept_assign",
}

// ExportCSV writes the batch to path as the matching data export for the
// generated documents.
func ExportCSV(batch []*ClaimRecord, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create export file %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("unable to write export header: %w", err)
	}

	for _, rec := range batch {
		lines := make([]string, 0, len(rec.ServiceLines))
		for _, l := range rec.ServiceLines {
			lines = append(lines, fmt.Sprintf("%s|%s|%s|%s|%.2f|%d",
				l.FromDate.Format(dateLayout), l.PlaceCode, l.CPTCode, l.Diagnosis, l.Charge, l.Units))
		}
		row := []string{
			rec.ULID.String(),
			rec.PatientLastName, rec.PatientFirstName, rec.PatientMI,
			rec.PatientDOB.Format(dateLayout),
			rec.PatientSex, rec.PatientStreet, rec.PatientCity, rec.PatientState,
			rec.PatientZip, rec.PatientPhone, rec.Relationship,
			rec.InsuredLastName, rec.InsuredFirstName, rec.InsuredID,
			rec.GroupNumber, rec.PlanName,
			rec.ProviderName, rec.ProviderNPI, rec.ProviderTaxID, rec.ProviderPhone,
			rec.Specialty,
			strings.Join(rec.Diagnoses, ";"),
			strings.Join(lines, ";"),
			fmt.Sprintf("%.2f", rec.TotalCharge),
			fmt.Sprintf("%.2f", rec.AmountPaid),
			fmt.Sprintf("%.2f", rec.BalanceDue),
			strconv.FormatBool(rec.AcceptAssign),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("unable to write export row for %s: %w", rec.ULID, err)
		}
	}

	w.Flush()
	return w.Error()
}
