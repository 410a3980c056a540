package options

import "time"

func Duration(value time.Duration) *time.Duration {
	v := value
	return &v
}

func Int(value int) *int {
	v := value
	return &v
}

func String(value string) *string {
	v := value
	return &v
}
