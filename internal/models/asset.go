package models

// AssetRef names an externally hosted media file: the public URL plus the
// host-side identifier needed to delete it later.
type AssetRef struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"public_id" json:"public_id"`
}
