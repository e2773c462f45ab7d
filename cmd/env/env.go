package env

const (
	// Prefix is the prefix for all bankrates environment variables
	Prefix = "BANKRATES_"

	// DBURLSuffix is the env variable (suffix) holding the DB connection string
	DBURLSuffix = "DB_URL"
)
