package ingest

import "kvk-dashboard/internal/domain"

type Field string

const (
	FieldGovernorID   Field = "governor_id"
	FieldGovernorName Field = "governor_name"
	FieldPower        Field = "power"
	FieldKillPoints   Field = "kill_points"
	FieldDeads        Field = "deads"
	FieldTotalDeads   Field = "total_deads"
	FieldT1Kills      Field = "t1_kills"
	FieldT2Kills      Field = "t2_kills"
	FieldT3Kills      Field = "t3_kills"
	FieldT4Kills      Field = "t4_kills"
	FieldT5Kills      Field = "t5_kills"
)

// Column binds a canonical field to the header spellings seen in exports,
// in probe order. Numeric columns carry a setter; text columns do not.
type Column struct {
	Field   Field
	Aliases []string
	set     func(*domain.StatRecord, int64)
}

var (
	governorIDColumn = Column{
		Field:   FieldGovernorID,
		Aliases: []string{"Governor ID", "governor_id", "ID", "GovernorID", "ID Thống đốc"},
	}
	governorNameColumn = Column{
		Field:   FieldGovernorName,
		Aliases: []string{"Governor Name", "governor_name", "Name", "GovernorName", "Tên Thống đốc", "Tên"},
	}
	totalDeadsColumn = Column{
		Field:   FieldTotalDeads,
		Aliases: []string{"Total Deads", "total_deads", "TotalDeads", "Tổng tử trận"},
		set:     func(r *domain.StatRecord, v int64) { r.TotalDeads = v },
	}
)

// StatColumns is the full phase-upload layout.
var StatColumns = []Column{
	governorIDColumn,
	governorNameColumn,
	{
		Field:   FieldPower,
		Aliases: []string{"Power", "power", "Sức mạnh"},
		set:     func(r *domain.StatRecord, v int64) { r.Power = v },
	},
	{
		Field:   FieldKillPoints,
		Aliases: []string{"Kill Points", "kill_points", "KillPoints", "Điểm tiêu diệt"},
		set:     func(r *domain.StatRecord, v int64) { r.KillPoints = v },
	},
	{
		Field:   FieldDeads,
		Aliases: []string{"Deads", "deads", "Dead", "Tử trận"},
		set:     func(r *domain.StatRecord, v int64) { r.Deads = v },
	},
	totalDeadsColumn,
	tierColumn(FieldT1Kills, 1),
	tierColumn(FieldT2Kills, 2),
	tierColumn(FieldT3Kills, 3),
	tierColumn(FieldT4Kills, 4),
	tierColumn(FieldT5Kills, 5),
}

func tierColumn(field Field, tier int) Column {
	n := string(rune('0' + tier))
	return Column{
		Field: field,
		Aliases: []string{
			"Tier " + n + " Kills",
			"t" + n + "_kills",
			"T" + n + " Kills",
			"T" + n,
			"Tiêu diệt T" + n,
		},
		set: func(r *domain.StatRecord, v int64) { r.TierKills[tier-1] = v },
	}
}
