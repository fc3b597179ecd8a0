// pkg/constants/constants.go
package constants

//============== СОСТОЯНИЯ ОБОРУДОВАНИЯ ==============

// EquipmentState - состояние единицы оборудования в жизненном цикле.
type EquipmentState string

const (
	StateAvailable     EquipmentState = "AVAILABLE"
	StateActive        EquipmentState = "ACTIVE"
	StateInMaintenance EquipmentState = "IN_MAINTENANCE"
	StatePreDisposal   EquipmentState = "PRE_DISPOSAL"
	StateRetired       EquipmentState = "RETIRED"
)

// AllEquipmentStates - допустимые состояния, в том числе при создании.
var AllEquipmentStates = []EquipmentState{
	StateAvailable,
	StateActive,
	StateInMaintenance,
	StatePreDisposal,
	StateRetired,
}

func (s EquipmentState) String() string { return string(s) }

func (s EquipmentState) IsValid() bool {
	for _, st := range AllEquipmentStates {
		if st == s {
			return true
		}
	}
	return false
}

// IsTerminal - из RETIRED никаких переходов нет.
func (s EquipmentState) IsTerminal() bool { return s == StateRetired }

//============== ДЕЙСТВИЯ (ПЕРЕХОДЫ) ==============

// Action - попытка перехода, передается в InvalidTransitionError.
type Action string

const (
	ActionCreate              Action = "CREATE"
	ActionEdit                Action = "EDIT"
	ActionAssign              Action = "ASSIGN"
	ActionReturn              Action = "RETURN"
	ActionMarkForDisposal     Action = "MARK_FOR_DISPOSAL"
	ActionSendToMaintenance   Action = "SEND_TO_MAINTENANCE"
	ActionFinalizeMaintenance Action = "FINALIZE_MAINTENANCE"
	ActionDecommission        Action = "DECOMMISSION"

	// ActionReleaseHolder - снять пользователя, ожидающего оборудование из ремонта.
	ActionReleaseHolder Action = "RELEASE_HOLDER"

	// ActionReleaseFromUser - возврат или снятие ожидания, только если единица числится за пользователем.
	ActionReleaseFromUser Action = "RELEASE_FROM_USER"

	ActionLicenseAssign  Action = "LICENSE_ASSIGN"
	ActionLicenseRelease Action = "LICENSE_RELEASE"
)

func (a Action) String() string { return string(a) }

//============== ТИПЫ СОБЫТИЙ ИСТОРИИ ==============

// HistoryKind - вид записи в журнале истории оборудования.
type HistoryKind string

const (
	HistoryCreate      HistoryKind = "CREATE"
	HistoryEdit        HistoryKind = "EDIT"
	HistoryAssignment  HistoryKind = "ASSIGNMENT"
	HistoryReception   HistoryKind = "RECEPTION"
	HistoryPreDisposal HistoryKind = "PRE_DISPOSAL"
	HistoryMaintenance HistoryKind = "MAINTENANCE"
	HistoryBaja        HistoryKind = "BAJA"

	// HistoryHolderReleased - выдача закрыта, пока оборудование в ремонте.
	HistoryHolderReleased HistoryKind = "HOLDER_RELEASED"
)

//============== ОБСЛУЖИВАНИЕ ==============

type MaintenanceKind string

const (
	MaintenanceCorrective MaintenanceKind = "CORRECTIVE"
	MaintenancePreventive MaintenanceKind = "PREVENTIVE"
)

// Disposition - итог обслуживания: вернуть в работу или списать.
type Disposition string

const (
	DispositionOperational Disposition = "OPERATIONAL"
	DispositionRetire      Disposition = "RETIRE"
)

//============== ПОДБОР НА ЗАМЕНУ ==============

const (
	DefaultRenewalMinAgeYears = 4
	DefaultRenewalQuotaPct    = 20
)
