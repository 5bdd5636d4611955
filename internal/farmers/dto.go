package farmers

type CreateFarmerRequest struct {
	Name       string  `json:"name" validate:"required,max=200"`
	NationalID *string `json:"national_id,omitempty" validate:"omitempty,max=50"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Village    *string `json:"village,omitempty" validate:"omitempty,max=200"`
	ClusterID  *int64  `json:"cluster_id,omitempty" validate:"omitempty,gt=0"`
	AgentID    int64   `json:"agent_id" validate:"required,gt=0"`
}

type UpdateFarmerRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	NationalID *string `json:"national_id,omitempty" validate:"omitempty,max=50"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Village    *string `json:"village,omitempty" validate:"omitempty,max=200"`
	ClusterID  *int64  `json:"cluster_id,omitempty" validate:"omitempty,gt=0"`
	Status     *string `json:"status,omitempty" validate:"omitempty,oneof=pending verified inactive"`
}

type ListFarmersRequest struct {
	Status *string `json:"status,omitempty"`
	Search *string `json:"search,omitempty"`
	Limit  int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset int     `json:"offset" validate:"gte=0"`
}
