// Package metrics holds the prometheus collectors of the relay daemon.
package metrics

const namespace = "btcrelay"

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func orUnknown[T ~string](v T) string {
	if v == "" {
		return "unknown"
	}
	return string(v)
}
