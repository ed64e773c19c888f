package config

import "time"

// AppConfig — настройки ядра бронирования, не относящиеся к БД.
type AppConfig struct {
	// Базовый URL провайдера внешних календарей. Пустая строка —
	// внешний источник не подключён, ядро работает по внутренним данным.
	BusySourceBaseURL string
	// Таймаут одного вызова занятости (на сотрудника).
	BusyCallTimeout time.Duration
	// Верхняя граница параллелизма fan-out по сотрудникам.
	BusyMaxParallel int
	// За сколько часов до начала слать напоминание.
	ReminderLeadHours int
}

func LoadAppConfig() *AppConfig {
	return &AppConfig{
		BusySourceBaseURL: getEnv("BUSY_SOURCE_BASE_URL", ""),
		BusyCallTimeout:   time.Duration(getEnvInt("BUSY_CALL_TIMEOUT_SEC", 5)) * time.Second,
		BusyMaxParallel:   getEnvInt("BUSY_MAX_PARALLEL", 8),
		ReminderLeadHours: getEnvInt("REMINDER_LEAD_HOURS", 24),
	}
}
