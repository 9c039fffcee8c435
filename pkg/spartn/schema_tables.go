package spartn

// schema_tables.go is the payload-schema catalogue: one Schema per
// (msgType, msgSubtype) pair, transliterated from the SPARTN payload
// definitions referenced in spec.md §1. Two inconsistencies present in
// that source are corrected here rather than carried forward, per
// spec.md §9 and DESIGN.md:
//
//   - the Ionosphere satellite block's predicates on "equation type"
//     are keyed uniformly on SF054 (the source mixes in a literal
//     "SF045" and a separately-cased "SF041I" in two branches, neither
//     of which is ever itself decoded);
//   - the Area Data Block's ionosphere-block indicator is spelled
//     "SF040I" throughout (the source has one branch using a lowercase
//     "SF040i").
//
// msgType 0 is OCB, 1 is HPAC, 2 is GAD, 3 is BPAC, 4 is EAS; subtypes
// 0..4 select GPS, GLONASS, Galileo, BeiDou and QZSS where applicable.
const (
	msgOCB  = 0
	msgHPAC = 1
	msgGAD  = 2
	msgBPAC = 3
	msgEAS  = 4

	subGPS = 0
	subGLO = 1
	subGAL = 2
	subBEI = 3
	subQZS = 4
)

type schemaDef struct {
	name   string
	schema Schema
}

var schemaRegistry map[schemaKey]schemaDef

func init() {
	schemaRegistry = map[schemaKey]schemaDef{
		{msgOCB, subGPS}:  {"SPARTN-1X-OCB-GPS", buildOCB("SF016", "SF011", "SF018", "SF025", "SF027")},
		{msgOCB, subGLO}:  {"SPARTN-1X-OCB-GLO", buildOCB("SF017", "SF012", "SF019", "SF026", "SF028")},
		{msgOCB, subGAL}:  {"SPARTN-1X-OCB-GAL", buildOCB("SF096", "SF093", "SF099", "SF102", "SF105")},
		{msgOCB, subBEI}:  {"SPARTN-1X-OCB-BEI", buildOCB("SF097", "SF094", "SF100", "SF103", "SF106")},
		{msgOCB, subQZS}:  {"SPARTN-1X-OCB-QZS", buildOCB("SF098", "SF095", "SF101", "SF104", "SF107")},

		{msgHPAC, subGPS}: {"SPARTN-1X-HPAC-GPS", buildHPAC("SF011")},
		{msgHPAC, subGLO}: {"SPARTN-1X-HPAC-GLO", buildHPAC("SF012")},
		{msgHPAC, subGAL}: {"SPARTN-1X-HPAC-GAL", buildHPAC("SF093")},
		{msgHPAC, subBEI}: {"SPARTN-1X-HPAC-BEI", buildHPAC("SF094")},
		{msgHPAC, subQZS}: {"SPARTN-1X-HPAC-QZS", buildHPAC("SF095")},

		{msgGAD, 0}: {"SPARTN-1X-GAD", gadSchema()},

		// Placeholders: the source definitions for these are empty, and
		// nothing in spec.md supplies their wire layout either.
		{msgBPAC, 0}: {"SPARTN-1X-BPAC", Schema{}},
		{msgEAS, 0}:  {"SPARTN-1X-EAS-DYN", Schema{}},
		{msgEAS, 1}:  {"SPARTN-1X-EAS-GRP", Schema{}},
	}
}

func ocbHeader() Schema {
	return Schema{
		field("SF005", "Solution issue of update"),
		field("SF069", "Reserved"),
		field("SF010", "End of set"),
		field("SF008", "Yaw present flag"),
		field("SF009", "Satellite reference datum"),
	}
}

// buildOCB assembles the Orbit/Clock/Bias schema for one constellation;
// ephID/maskID/iodeID/phaseMaskID/codeMaskID are that constellation's
// field identifiers, substituted into the otherwise shared shape. The
// orbit/clock and phase/code-bias blocks are unconditional: SF014 is a
// plain field, never a predicate, for every one of the five OCB
// schemas.
func buildOCB(ephID, maskID, iodeID, phaseMaskID, codeMaskID string) Schema {
	satBlock := Schema{
		field("SF013", "Do not use"),
		field("SF014", "OCB present flags"),
		field("SF015", "Continuity indicator"),
		field(iodeID, "IODE"),
		field("SF020R", "Orbit radial correction"),
		field("SF020A", "Orbit along-track correction"),
		field("SF020C", "Orbit cross-track correction"),
		field("SF021", "Satellite yaw"),
		field("SF022", "IODE continuity"),
		field("SF020", "Clock correction"),
		field("SF024", "User range error"),
		field(NPHABIASMASK, "phase bias mask length"),
		field(phaseMaskID, "phase bias mask"),
		group("groupPhaseBias-BITS", nbCount(phaseMaskID), Schema{
			field("SF023", "Fix flag"),
			field("SF015", "Continuity indicator"),
			field("SF020PB", "Phase bias correction"),
		}),
		field(NCODBIASMASK, "code bias mask length"),
		field(codeMaskID, "code bias mask"),
		group("groupCodeBias-BITS", nbCount(codeMaskID), Schema{
			field("SF029", "Code bias correction"),
		}),
	}

	return append(ocbHeader(),
		field(ephID, "Ephemeris type"),
		field(NSATMASK, "satellite mask length"),
		field(maskID, "satellite mask"),
		group("groupSat-BITS", nsatCount(), satBlock),
	)
}

func hpacHeader() Schema {
	return Schema{
		field("SF005", "Solution issue of update"),
		field("SF068", "Area issue of update"),
		field("SF069", "Reserved"),
		field("SF010", "End of set"),
		field("SF030", "Area count"),
	}
}

func tropDataBlock() Schema {
	return Schema{
		field("SF041", "Tropo equation type"),
		field("SF042", "Tropo quality"),
		field("SF043", "Area average vertical hydrostatic delay"),
		field("SF044", "Tropo poly coefficient size indicator"),
		cond("optSF044-0", "SF044", []int64{0}, Schema{
			field("SF045", "Tropo coefficient T00"),
			cond("optSF041-12a", "SF041", []int64{1, 2}, Schema{
				field("SF046a", "Tropo coefficient T01"),
				field("SF046b", "Tropo coefficient T10"),
			}),
			cond("optSF041-2a", "SF041", []int64{2}, Schema{
				field("SF047", "Tropo coefficient T11"),
			}),
		}),
		cond("optSF044-1", "SF044", []int64{1}, Schema{
			field("SF048", "Tropo coefficient T00"),
			cond("optSF041-12b", "SF041", []int64{1, 2}, Schema{
				field("SF049a", "Tropo coefficient T01"),
				field("SF049b", "Tropo coefficient T10"),
			}),
			cond("optSF041-2b", "SF041", []int64{2}, Schema{
				field("SF050", "Tropo coefficient T11"),
			}),
		}),
		field("SF051", "Tropo residual field size"),
		cond("optSF051-0", "SF051", []int64{0}, Schema{field("SF052", "Tropo grid residuals")}),
		cond("optSF051-1", "SF051", []int64{1}, Schema{field("SF053", "Tropo grid residuals")}),
	}
}

func ionSatBlock() Schema {
	return Schema{
		field("SF055", "Ionosphere quality"),
		field("SF056", "Iono poly coefficient size indicator"),
		cond("optSF056-0", "SF056", []int64{0}, Schema{
			field("SF057", "Iono coefficient C00"),
			cond("optSF054-12a", "SF054", []int64{1, 2}, Schema{
				field("SF058a", "Iono coefficient C01"),
				field("SF058b", "Iono coefficient C10"),
			}),
			cond("optSF054-2a", "SF054", []int64{2}, Schema{field("SF059", "Iono coefficient C11")}),
		}),
		cond("optSF056-1", "SF056", []int64{1}, Schema{
			field("SF060", "Iono coefficient C00"),
			cond("optSF054-12b", "SF054", []int64{1, 2}, Schema{
				field("SF061a", "Iono coefficient C01"),
				field("SF061b", "Iono coefficient C10"),
			}),
			cond("optSF054-2b", "SF054", []int64{2}, Schema{field("SF062", "Iono coefficient C11")}),
		}),
		field("SF063", "Iono residual field size"),
		cond("optSF063-0", "SF063", []int64{0}, Schema{field("SF064", "Iono grid residuals")}),
		cond("optSF063-1", "SF063", []int64{1}, Schema{field("SF065", "Iono grid residuals")}),
		cond("optSF063-2", "SF063", []int64{2}, Schema{field("SF066", "Iono grid residuals")}),
		cond("optSF063-3", "SF063", []int64{3}, Schema{field("SF067", "Iono grid residuals")}),
	}
}

func ionDataBlock(maskID string) Schema {
	return Schema{
		field("SF054", "Ionosphere equation type"),
		field(NSATMASK, "Iono satellite mask length"),
		field(maskID, "Ionosphere satellite mask"),
		group("groupIonSat-BITS", nsatCount(), ionSatBlock()),
	}
}

func areaDataBlock(maskID string) Schema {
	return Schema{
		field("SF031", "Area ID"),
		field("SF039", "Number of grid points present"),
		field("SF040T", "Tropo blocks indicator"),
		field("SF040I", "Iono blocks indicator"),
		cond("optSF040T-12", "SF040T", []int64{1, 2}, tropDataBlock()),
		cond("optSF040I-12", "SF040I", []int64{1, 2}, ionDataBlock(maskID)),
	}
}

func buildHPAC(maskID string) Schema {
	return append(hpacHeader(),
		group("groupArea-BITS", fieldCount("SF030"), areaDataBlock(maskID)),
	)
}

func gadSchema() Schema {
	areaBlock := Schema{
		field("SF031", "Area ID"),
		field("SF032", "Area reference latitude"),
		field("SF033", "Area reference longitude"),
		field("SF034", "Area latitude grid node count"),
		field("SF035", "Area longitude grid node count"),
		field("SF036", "Area latitude grid node spacing"),
		field("SF037", "Area longitude grid node spacing"),
	}
	return Schema{
		field("SF005", "Solution issue of update"),
		field("SF069", "Reserved"),
		field("SF010", "End of set"),
		field("SF030", "Area count"),
		group("groupArea-BITS", fieldCount("SF030"), areaBlock),
	}
}
