// Package jitter добавляет случайность в интервалы ожидания, чтобы переподключения
// нескольких экземпляров не совпадали по времени.
package jitter

import (
	"math/rand/v2"
	"time"
)

// DefaultJitter - стандартный коэффициент джиттера (50%)
const DefaultJitter = 0.5

// Duration возвращает продолжительность в диапазоне [d, d*(1+jitterFactor)).
func Duration(d time.Duration, jitterFactor float64) time.Duration {
	if d <= 0 || jitterFactor <= 0 {
		return d
	}
	return d + time.Duration(rand.Float64()*jitterFactor*float64(d))
}

// ExponentialBackoff удваивает base на каждую попытку (нумерация с нуля), не превышая max,
// и добавляет джиттер.
func ExponentialBackoff(base, max time.Duration, attempt int, jitterFactor float64) time.Duration {
	backoff := base
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff >= max {
			backoff = max
			break
		}
	}
	return Duration(backoff, jitterFactor)
}
