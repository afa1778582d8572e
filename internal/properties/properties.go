package properties

import "os"

func RootPath() string {
	return os.Getenv("ROOT_PATH")
}

// StacAPIURL is the catalog search endpoint. Defaults to the public
// Earth Search API when unset.
func StacAPIURL() string {
	if url := os.Getenv("STAC_API_URL"); url != "" {
		return url
	}
	return "https://earth-search.aws.element84.com/v1"
}

// StacCollection is the imagery collection scenes are searched in.
func StacCollection() string {
	if c := os.Getenv("STAC_COLLECTION"); c != "" {
		return c
	}
	return "sentinel-2-l2a"
}

func ProcessAPIURL() string {
	if url := os.Getenv("PROCESS_API_URL"); url != "" {
		return url
	}
	return "https://sh.dataspace.copernicus.eu/api/v1/process"
}

func CopernicusClientID() string {
	return os.Getenv("COPERNICUS_CLIENT_ID")
}

func CopernicusClientSecret() string {
	return os.Getenv("COPERNICUS_CLIENT_SECRET")
}

func CopernicusTokenURL() string {
	return os.Getenv("COPERNICUS_TOKEN_URL")
}

func DiscordErrorNotificationUrl() string {
	return os.Getenv("DISCORD_ERROR_NOTIFICATION_URL")
}
func DiscordSuccessNotificationUrl() string {
	return os.Getenv("DISCORD_SUCCESS_NOTIFICATION_URL")
}
