package domain

// Config holds the gateway's runtime settings, loaded in main from flags,
// environment, and an optional config file.
type Config struct {
	ListenAddr   string
	DatabasePath string
	HistoryLimit int
}

const DefaultHistoryLimit = 50

func NewConfig(listenAddr, databasePath string, historyLimit int) Config {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return Config{
		ListenAddr:   listenAddr,
		DatabasePath: databasePath,
		HistoryLimit: historyLimit,
	}
}
