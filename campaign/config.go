package campaign

type Config struct {
	Signature     string `envconfig:"EMAIL_SIGNATURE" default:"Sophia"`
	ImagesEnabled bool   `envconfig:"IMAGES_ENABLED" default:"true"`

	// DryRun composes every email but hands it to a sender that only logs.
	DryRun bool `envconfig:"DRY_RUN" default:"false"`
}
