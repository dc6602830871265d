package phase

// Phase identifies one coarse execution stage of an analysis run. Providers
// are bucketed by phase, and phases execute in the catalog's fixed order.
type Phase string

// Stock phases, in execution order.
const (
	Discovery         Phase = "discovery"
	ArchiveExtraction Phase = "archive-extraction"
	ArchiveMetadata   Phase = "archive-metadata"
	Decompilation     Phase = "decompilation"
	InitialAnalysis   Phase = "initial-analysis"
	MigrationRules    Phase = "migration-rules"
	PostMigration     Phase = "post-migration"
	PreReport         Phase = "pre-report"
	ReportGeneration  Phase = "report-generation"
	ReportRendering   Phase = "report-rendering"
	Finalize          Phase = "finalize"
)

// String returns the phase identifier.
func (p Phase) String() string {
	return string(p)
}

// Standard returns the stock catalog used when no custom phase list is
// configured. MigrationRules is the default phase.
func Standard() *Catalog {
	catalog, err := NewCatalog([]Phase{
		Discovery,
		ArchiveExtraction,
		ArchiveMetadata,
		Decompilation,
		InitialAnalysis,
		MigrationRules,
		PostMigration,
		PreReport,
		ReportGeneration,
		ReportRendering,
		Finalize,
	}, MigrationRules)
	if err != nil {
		panic(err)
	}
	return catalog
}
