package helpers

import "time"

func CoalesceDuration(dd ...time.Duration) time.Duration {
	for _, d := range dd {
		if d != 0 {
			return d
		}
	}
	return 0
}

func CoalesceInt(ii ...int) int {
	for _, i := range ii {
		if i != 0 {
			return i
		}
	}
	return 0
}

func CoalesceString(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}

	return ""
}
