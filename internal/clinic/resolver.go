package clinic

import "context"

// Resolution tells the caller whether an identity already existed.
type Resolution int

const (
	Found Resolution = iota + 1
	Created
)

func (r Resolution) String() string {
	switch r {
	case Found:
		return "found"
	case Created:
		return "created"
	}
	return "unresolved"
}

// IdentityResolver implements find-or-create for patients and doctors. An
// existing record always wins: candidate attributes are never written over it.
type IdentityResolver struct {
	repo Repository
}

func NewIdentityResolver(repo Repository) *IdentityResolver {
	return &IdentityResolver{repo: repo}
}

// ResolvePatient returns the stored patient when one exists with the
// candidate's id, otherwise inserts the candidate as given.
func (r *IdentityResolver) ResolvePatient(ctx context.Context, candidate Patient) (Patient, Resolution, error) {
	exists, err := r.repo.PatientExists(ctx, candidate.ID)
	if err != nil {
		return Patient{}, 0, persistence("look up patient", err)
	}

	if exists {
		stored, err := r.repo.GetPatientByID(ctx, candidate.ID)
		if err != nil {
			return Patient{}, 0, persistence("load patient", err)
		}
		return *stored, Found, nil
	}

	if err := r.repo.InsertPatient(ctx, candidate); err != nil {
		return Patient{}, 0, persistence("insert patient", err)
	}
	return candidate, Created, nil
}

// ResolveDoctor is ResolvePatient for doctors.
func (r *IdentityResolver) ResolveDoctor(ctx context.Context, candidate Doctor) (Doctor, Resolution, error) {
	exists, err := r.repo.DoctorExists(ctx, candidate.ID)
	if err != nil {
		return Doctor{}, 0, persistence("look up doctor", err)
	}

	if exists {
		stored, err := r.repo.GetDoctorByID(ctx, candidate.ID)
		if err != nil {
			return Doctor{}, 0, persistence("load doctor", err)
		}
		return *stored, Found, nil
	}

	if err := r.repo.InsertDoctor(ctx, candidate); err != nil {
		return Doctor{}, 0, persistence("insert doctor", err)
	}
	return candidate, Created, nil
}
