package models

// Category is the closed set of equipment categories.
type Category string

const (
	CategoryLaptop   Category = "LAPTOP"
	CategoryMobile   Category = "MOBILE"
	CategorySIM      Category = "SIM"
	CategoryTablet   Category = "TABLET"
	CategoryUSBStick Category = "USB_STICK"
	CategoryDesktop  Category = "DESKTOP"
)

// Categories lists every valid Category.
var Categories = []Category{
	CategoryLaptop, CategoryMobile, CategorySIM, CategoryTablet, CategoryUSBStick, CategoryDesktop,
}

// EquipmentStatus is the closed set of equipment states.
type EquipmentStatus string

const (
	EquipmentCustomerOwned   EquipmentStatus = "CUSTOMER_OWNED"
	EquipmentIncomingGift    EquipmentStatus = "INCOMING_GIFT"
	EquipmentSuitableForGift EquipmentStatus = "SUITABLE_FOR_GIFT"
	EquipmentReserved        EquipmentStatus = "RESERVED"
	EquipmentSold            EquipmentStatus = "SOLD"
	EquipmentDemolition      EquipmentStatus = "DEMOLITION"
)

// EquipmentStatuses lists every valid EquipmentStatus.
var EquipmentStatuses = []EquipmentStatus{
	EquipmentCustomerOwned, EquipmentIncomingGift, EquipmentSuitableForGift,
	EquipmentReserved, EquipmentSold, EquipmentDemolition,
}

// TicketStatus is the closed set of ticket states.
type TicketStatus string

const (
	TicketCustomerContacted TicketStatus = "CUSTOMER_CONTACTED"
	TicketInProgress        TicketStatus = "IN_PROGRESS"
	TicketOpen              TicketStatus = "OPEN"
	TicketReady             TicketStatus = "READY"
	TicketClosed            TicketStatus = "CLOSED"
	TicketCustomerInformed  TicketStatus = "CUSTOMER_INFORMED"
)

// TicketStatuses lists every valid TicketStatus.
var TicketStatuses = []TicketStatus{
	TicketCustomerContacted, TicketInProgress, TicketOpen,
	TicketReady, TicketClosed, TicketCustomerInformed,
}

// TicketType distinguishes repairs from equipment issues.
type TicketType string

const (
	TicketRepair TicketType = "REPAIR"
	TicketIssue  TicketType = "ISSUE"
)

// RoleVolunteer is the authority granted to volunteers.
const RoleVolunteer = "ROLE_VOLUNTEER"
