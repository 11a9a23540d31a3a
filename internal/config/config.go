package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`

	DBType     string `env:"DBType" envDefault:"sqlite"`
	DSNURL     string `env:"DSN_URL" envDefault:""`
	DBUser     string `env:"DBUser" envDefault:""`
	DBPassword string `env:"DBPassword" envDefault:""`
	DBAddr     string `env:"DBAddr" envDefault:""`
	DBName     string `env:"DBName" envDefault:"teamspace"`
	DBPath     string `env:"DBPath" envDefault:"datas/teamspace.db"`
	DBPort     string `env:"DBPort" envDefault:"3306"`

	JWTSecret                    string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	JWTIssuer                    string `env:"JWT_ISSUER" envDefault:"teamspace"`
	JWTExpirationMinutes         int    `env:"JWT_EXPIRATION_MINUTES" envDefault:"30"`
	EmailVerifyExpirationHours   int    `env:"EMAIL_VERIFY_EXPIRATION_HOURS" envDefault:"72"`
	PasswordResetExpirationHours int    `env:"PASSWORD_RESET_EXPIRATION_HOURS" envDefault:"24"`

	EmailVerificationEnabled bool `env:"EMAIL_VERIFICATION_ENABLED" envDefault:"false"`

	SMTPHost     string `env:"SMTP_HOST" envDefault:""`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER" envDefault:""`
	SMTPPassword string `env:"SMTP_PASSWORD" envDefault:""`
	SMTPFrom     string `env:"SMTP_FROM" envDefault:"noreply@teamspace.local"`

	AuthRatePerMinute int `env:"AUTH_RATE_PER_MINUTE" envDefault:"10"`
	AuthRateBurst     int `env:"AUTH_RATE_BURST" envDefault:"10"`
}

func ParseConfig() (Config, error) {
	var Conf Config
	err := env.Parse(&Conf)
	if err != nil {
		logrus.WithError(err).Error("env.Parse error")
		return Config{}, err
	}
	logrus.Debugf("%#v\n", Conf)
	return Conf, nil
}
