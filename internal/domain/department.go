package domain

// Department names a hospital area a patient, staff member or resource belongs to.
type Department string

const (
	DepartmentReception  Department = "Reception"
	DepartmentOPD        Department = "OPD"
	DepartmentLaboratory Department = "Laboratory"
	DepartmentRadiology  Department = "Radiology"
	DepartmentPharmacy   Department = "Pharmacy"
	DepartmentBilling    Department = "Billing"
)

// Departments is the fixed roster scanned by flow reports and generators.
var Departments = []Department{
	DepartmentReception,
	DepartmentOPD,
	DepartmentLaboratory,
	DepartmentRadiology,
	DepartmentPharmacy,
	DepartmentBilling,
}

// Valid reports whether d is on the roster.
func (d Department) Valid() bool {
	for _, candidate := range Departments {
		if candidate == d {
			return true
		}
	}
	return false
}
