package domain

// ResourceID identifies a room, bed or piece of equipment (e.g. R011).
type ResourceID string

// ResourceType enumerates resource categories.
type ResourceType string

const (
	ResourceTypeOPDRoom   ResourceType = "OPD_Room"
	ResourceTypeLab       ResourceType = "Lab"
	ResourceTypeBed       ResourceType = "Bed"
	ResourceTypeEquipment ResourceType = "Equipment"
)

// ResourceTypes lists every resource category.
var ResourceTypes = []ResourceType{ResourceTypeOPDRoom, ResourceTypeLab, ResourceTypeBed, ResourceTypeEquipment}

// ResourceStatus enumerates resource availability.
type ResourceStatus string

const (
	ResourceStatusAvailable   ResourceStatus = "Available"
	ResourceStatusOccupied    ResourceStatus = "Occupied"
	ResourceStatusMaintenance ResourceStatus = "Maintenance"
	ResourceStatusReserved    ResourceStatus = "Reserved"
)

// ResourceStatuses lists every availability state.
var ResourceStatuses = []ResourceStatus{ResourceStatusAvailable, ResourceStatusOccupied, ResourceStatusMaintenance, ResourceStatusReserved}

// Resource is a physical asset tracked for utilization.
type Resource struct {
	ID               ResourceID
	Name             string
	Type             ResourceType
	Department       Department
	Status           ResourceStatus
	CurrentPatientID *PatientID
	Capacity         int
	UtilizationRate  int
}
