package timer

import (
	"fmt"
	"math"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// State is the persisted accrual state of one counter. StartTimestamp is set
// exactly when Running is true.
type State struct {
	Running            bool   `json:"running"`
	StartTimestamp     *int64 `json:"startTime"` // epoch millis
	AccumulatedSeconds int64  `json:"totalSeconds"`
}

// record is the timer_state document.
type record struct {
	SchemaVersion int   `json:"schemaVersion"`
	Work          State `json:"work"`
	Study         State `json:"study"`
}

const schemaVersion = 1

// upgrades[v] rewrites a version v document into version v+1. Steps operate on
// raw JSON so they stay independent of the live State struct.
var upgrades = []func(raw []byte) ([]byte, error){
	minutesToSeconds,
}

// upgradeRecord brings raw up to schemaVersion. changed reports whether any
// step ran.
func upgradeRecord(raw []byte) (out []byte, changed bool, err error) {
	if !gjson.ValidBytes(raw) {
		return nil, false, fmt.Errorf("timer state is not valid JSON")
	}
	version := int(gjson.GetBytes(raw, "schemaVersion").Int())
	if version > schemaVersion {
		return nil, false, fmt.Errorf("timer state schema %d is newer than %d", version, schemaVersion)
	}
	for version < schemaVersion {
		raw, err = upgrades[version](raw)
		if err != nil {
			return nil, false, fmt.Errorf("upgrade timer state v%d: %w", version, err)
		}
		version++
		raw, err = sjson.SetBytes(raw, "schemaVersion", version)
		if err != nil {
			return nil, false, err
		}
		changed = true
	}
	return raw, changed, nil
}

// minutesToSeconds replaces the legacy, possibly fractional, totalMinutes field
// with whole totalSeconds.
func minutesToSeconds(raw []byte) ([]byte, error) {
	var err error
	for _, k := range Kinds {
		legacy := gjson.GetBytes(raw, string(k)+".totalMinutes")
		if !legacy.Exists() {
			continue
		}
		secs := int64(math.Floor(legacy.Float() * 60))
		raw, err = sjson.SetBytes(raw, string(k)+".totalSeconds", secs)
		if err != nil {
			return nil, err
		}
		raw, err = sjson.DeleteBytes(raw, string(k)+".totalMinutes")
		if err != nil {
			return nil, err
		}
	}
	return raw, nil
}
