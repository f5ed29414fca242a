package core

import "inventorycore/pkg/domain"

type (
	EntityType         = domain.EntityType
	Equipment          = domain.Equipment
	Accessory          = domain.Accessory
	Cartridge          = domain.Cartridge
	OperationalStatus  = domain.OperationalStatus
	EquipmentType      = domain.EquipmentType
	AccessoryCategory  = domain.AccessoryCategory
	CartridgeStatus    = domain.CartridgeStatus
	CartridgeColor     = domain.CartridgeColor
	UniqueField        = domain.UniqueField
	Change             = domain.Change
	Action             = domain.Action
	Severity           = domain.Severity
	Violation          = domain.Violation
	Result             = domain.Result
	Rule               = domain.Rule
	RuleView           = domain.RuleView
	RulesEngine        = domain.RulesEngine
	RuleViolationError = domain.RuleViolationError
	Transaction        = domain.Transaction
	TransactionView    = domain.TransactionView
	PersistentStore    = domain.PersistentStore
)

const (
	EntityEquipment = domain.EntityEquipment
	EntityAccessory = domain.EntityAccessory
	EntityCartridge = domain.EntityCartridge
)

const (
	StatusAvailable     = domain.StatusAvailable
	StatusActive        = domain.StatusActive
	StatusInactive      = domain.StatusInactive
	StatusInMaintenance = domain.StatusInMaintenance
	StatusArchived      = domain.StatusArchived
)

const (
	TypeNotebook = domain.TypeNotebook
	TypeDesktop  = domain.TypeDesktop
	TypeTablet   = domain.TypeTablet
	TypePrinter  = domain.TypePrinter
	TypeServer   = domain.TypeServer
	TypeRouter   = domain.TypeRouter
	TypeSwitch   = domain.TypeSwitch
	TypeOther    = domain.TypeOther
)

const (
	CartridgeAvailable = domain.CartridgeAvailable
	CartridgeInUse     = domain.CartridgeInUse
	CartridgeReplaced  = domain.CartridgeReplaced
)

const (
	FieldSerialNumber = domain.FieldSerialNumber
	FieldAssetTag     = domain.FieldAssetTag
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)
