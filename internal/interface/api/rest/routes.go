package rest

const (
	// api
	RouteApiV1 = "/api/v1"

	// folders
	RouteFolders       = RouteApiV1 + "/folders"
	RouteFolder        = RouteFolders + "/:folder_id"
	RouteFolderShares  = RouteFolder + "/shares"
	RouteSharedFolders = RouteFolders + "/shared"

	// files
	RouteFiles          = RouteApiV1 + "/files"
	RouteFile           = RouteFiles + "/:file_id"
	RouteFileContent    = RouteFile + "/content"
	RouteFileVisibility = RouteFile + "/visibility"
	RouteFileTokens     = RouteFile + "/tokens"

	// public token links
	RouteShare = RouteApiV1 + "/share/:token"

	// account
	RouteAccount         = RouteApiV1 + "/account"
	RouteAccountDeletion = RouteAccount + "/deletion"

	// terms of use
	RouteTerms       = RouteApiV1 + "/terms"
	RouteTermsStatus = RouteTerms + "/status"

	// backups
	RouteBackups = RouteApiV1 + "/backups"
	RouteBackup  = RouteBackups + "/:backup_id"

	// ops
	RouteHealth  = RouteApiV1 + "/healthz"
	RouteMetrics = RouteApiV1 + "/metrics"
)
