package matrixdto

type PlaceInput struct {
	MemberID  string
	SponsorID string
}

type RemoveConnectionInput struct {
	MemberID string
	Reason   string
}
