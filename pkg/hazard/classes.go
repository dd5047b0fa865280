package hazard

// Hazard class names. Custom CV detectors emit these directly; model
// detections are mapped onto them by the adapter.
const (
	ClassStairs         = "stairs"
	ClassCurb           = "curb"
	ClassPothole        = "pothole"
	ClassManhole        = "manhole"
	ClassBrokenPavement = "broken_pavement"
	ClassTactilePaving  = "tactile_paving"
	ClassStep           = "step"
	ClassGap            = "gap"
	ClassPerson         = "person"
	ClassBicycle        = "bicycle"
	ClassVehicle        = "vehicle"
	ClassObstacle       = "obstacle"
	ClassSign           = "sign"
)

// DefaultPriority is assigned to classes absent from the priority table.
// Priority 1 detections are rendered but never announced.
const DefaultPriority = 1

// Priorities is the default per-class priority table (1 low - 5 critical).
// Values are empirically tuned; deployments can override via
// pipeline.Config.Priorities.
var Priorities = map[string]int{
	ClassPothole:        5,
	ClassManhole:        5,
	ClassGap:            5,
	ClassStairs:         4,
	ClassCurb:           4,
	ClassStep:           4,
	ClassBrokenPavement: 3,
	ClassTactilePaving:  3,
	ClassVehicle:        3,
	ClassPerson:         2,
	ClassBicycle:        2,
	ClassObstacle:       2,
}

// PriorityFor returns the priority level for a class name, falling back
// to DefaultPriority for unknown classes.
func PriorityFor(class string) int {
	if p, ok := Priorities[class]; ok {
		return p
	}
	return DefaultPriority
}

// spokenLabels maps class names to the phrase used in announcements.
var spokenLabels = map[string]string{
	ClassPothole:        "pothole",
	ClassManhole:        "manhole cover",
	ClassStairs:         "stairs",
	ClassCurb:           "curb",
	ClassStep:           "step",
	ClassGap:            "gap",
	ClassBrokenPavement: "broken pavement",
	ClassTactilePaving:  "tactile paving",
	ClassPerson:         "pedestrian",
	ClassBicycle:        "bicycle",
	ClassVehicle:        "vehicle",
	ClassObstacle:       "obstacle",
	ClassSign:           "sign",
}

// SpokenLabel returns the announcement phrase for a class name.
// Unknown classes are spoken as-is.
func SpokenLabel(class string) string {
	if l, ok := spokenLabels[class]; ok {
		return l
	}
	return class
}

// ModelClassMapping folds the generic object detector's COCO classes
// into hazard classes. Classes absent from the map keep their own name
// (and therefore DefaultPriority).
var ModelClassMapping = map[string]string{
	"person":        ClassPerson,
	"bicycle":       ClassBicycle,
	"car":           ClassVehicle,
	"motorcycle":    ClassVehicle,
	"bus":           ClassVehicle,
	"truck":         ClassVehicle,
	"chair":         ClassObstacle,
	"bench":         ClassObstacle,
	"potted plant":  ClassObstacle,
	"fire hydrant":  ClassObstacle,
	"parking meter": ClassObstacle,
	"backpack":      ClassObstacle,
	"suitcase":      ClassObstacle,
	"stop sign":     ClassSign,
}

// NormalizeModelClass maps a raw model class name to its hazard class.
func NormalizeModelClass(name string) string {
	if mapped, ok := ModelClassMapping[name]; ok {
		return mapped
	}
	return name
}
