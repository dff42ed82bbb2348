package nodes

// Node names used when wiring the orchestration graph.
const (
	NodeRouter            = "Router"
	NodeDirectReply       = "DirectReply"
	NodeEvidenceRetriever = "EvidenceRetriever"
	NodeWebFallback       = "WebFallback"
	NodeSQLAnalyst        = "SQLAnalyst"
	NodeAnswerSynthesizer = "AnswerSynthesizer"
)
